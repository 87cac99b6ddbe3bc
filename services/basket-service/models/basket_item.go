package models

type BasketItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"userId"`
	ProductID uint `gorm:"not null" json:"productId"`
	Quantity  int  `gorm:"not null;check:quantity > 0" json:"quantity"`
}

type BasketItemRequest struct {
	UserID    uint `json:"userId" binding:"required"`
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

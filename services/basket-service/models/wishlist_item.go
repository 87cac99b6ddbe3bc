package models

import "time"

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

type WishlistItemRequest struct {
	UserID    uint `json:"userId" binding:"required"`
	ProductID uint `json:"productId" binding:"required"`
}

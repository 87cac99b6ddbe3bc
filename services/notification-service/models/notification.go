package models

import "time"

const (
	ChannelEmail = "email"

	StatusSent   = "sent"
	StatusFailed = "failed"

	TypeUserRegistered = "user_registered"
	TypeOrderCreated   = "order_created"
	TypeInvoiceCreated = "invoice_created"
)

// NotificationLog records one delivery outcome after all attempts.
type NotificationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Recipient string    `json:"recipient"`
	Type      string    `gorm:"type:varchar(32);index" json:"type"`
	Channel   string    `gorm:"type:varchar(16)" json:"channel"`
	Subject   string    `json:"subject"`
	Status    string    `gorm:"type:varchar(16);index" json:"status"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	MessageID string    `json:"message_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NotificationFilter struct {
	UserID   uint
	Status   string
	Type     string
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane bounds.
func (f *NotificationFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

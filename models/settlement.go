package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Settlement is a direct payment between two members recorded outside of
// any specific expense. Rows are immutable once created.
type Settlement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID    uuid.UUID `gorm:"type:uuid;index" json:"group_id"`
	FromUserID uuid.UUID `gorm:"type:uuid" json:"from_user_id"`
	FromUser   User      `gorm:"foreignKey:FromUserID" json:"-"`
	ToUserID   uuid.UUID `gorm:"type:uuid" json:"to_user_id"`
	ToUser     User      `gorm:"foreignKey:ToUserID" json:"-"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Currency   string    `gorm:"default:USD;size:3" json:"currency"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type CreateSettlementRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency"`
	Note     string `json:"note"`
}

type SettlementResponse struct {
	ID         uuid.UUID   `json:"id"`
	GroupID    uuid.UUID   `json:"group_id"`
	FromUserID uuid.UUID   `json:"from_user_id"`
	ToUserID   uuid.UUID   `json:"to_user_id"`
	Amount     int64       `json:"amount"`
	Currency   string      `json:"currency"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	FromUser   UserSummary `json:"from_user"`
	ToUser     UserSummary `json:"to_user"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Split methods
const (
	SplitEqual      = "equal"
	SplitPercentage = "percentage"
	SplitCustom     = "custom"
	SplitFull       = "full"
)

// Expense categories
var ExpenseCategories = []string{
	"accommodation", "transportation", "food", "activities", "shopping",
	"entertainment", "insurance", "visa", "communication", "other",
}

func ValidExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// SharedExpense is an amount paid upfront by one member and owed
// collectively by its participants. Amounts are integer minor currency
// units (cents); all split arithmetic stays integer-only.
type SharedExpense struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID      uuid.UUID            `gorm:"type:uuid;index" json:"group_id"`
	Group        TravelGroup          `gorm:"foreignKey:GroupID" json:"-"`
	PaidBy       uuid.UUID            `gorm:"type:uuid" json:"paid_by"`
	Payer        User                 `gorm:"foreignKey:PaidBy" json:"-"`
	Category     string               `gorm:"not null;size:30" json:"category"`
	Amount       int64                `gorm:"not null" json:"amount"`
	Currency     string               `gorm:"default:USD;size:3" json:"currency"`
	Description  string               `gorm:"not null;size:255" json:"description"`
	ReceiptURL   string               `json:"receipt_url,omitempty"`
	SplitMethod  string               `gorm:"default:equal;size:20" json:"split_method"`
	Date         time.Time            `json:"date"`
	Participants []ExpenseParticipant `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func (e *SharedExpense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ExpenseParticipant is one member's obligation within a shared expense.
// The sum of share amounts always equals the expense amount; the payer's
// own row is created pre-settled.
type ExpenseParticipant struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseID       uuid.UUID  `gorm:"type:uuid;index" json:"expense_id"`
	UserID          uuid.UUID  `gorm:"type:uuid" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ShareAmount     int64      `gorm:"not null" json:"share_amount"`
	SharePercentage *float64   `json:"share_percentage,omitempty"`
	IsSettled       bool       `gorm:"default:false" json:"is_settled"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

func (p *ExpenseParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Request structs
type ParticipantInput struct {
	UserID          string  `json:"userId" binding:"required"`
	ShareAmount     int64   `json:"shareAmount"`
	SharePercentage float64 `json:"sharePercentage"`
}

type CreateExpenseRequest struct {
	Category     string             `json:"category" binding:"required,oneof=accommodation transportation food activities shopping entertainment insurance visa communication other"`
	Amount       int64              `json:"amount" binding:"required,gt=0"`
	Currency     string             `json:"currency"`
	Description  string             `json:"description" binding:"required"`
	ReceiptURL   string             `json:"receiptUrl"`
	SplitMethod  string             `json:"splitMethod" binding:"required,oneof=equal percentage custom full"`
	Date         string             `json:"date" binding:"required"` // YYYY-MM-DD
	Participants []ParticipantInput `json:"participants" binding:"required,min=1"`
}

type UpdateExpenseRequest struct {
	Category     string             `json:"category" binding:"omitempty,oneof=accommodation transportation food activities shopping entertainment insurance visa communication other"`
	Amount       int64              `json:"amount" binding:"omitempty,gt=0"`
	Currency     string             `json:"currency"`
	Description  string             `json:"description"`
	ReceiptURL   *string            `json:"receiptUrl"`
	SplitMethod  string             `json:"splitMethod" binding:"omitempty,oneof=equal percentage custom full"`
	Date         string             `json:"date"`
	Participants []ParticipantInput `json:"participants"`
}

type SettleParticipantRequest struct {
	IsSettled *bool `json:"isSettled" binding:"required"`
}

// Response structs
type ExpenseResponse struct {
	ID           uuid.UUID             `json:"id"`
	GroupID      uuid.UUID             `json:"group_id"`
	PaidBy       uuid.UUID             `json:"paid_by"`
	PaidByUser   UserSummary           `json:"paid_by_user"`
	Category     string                `json:"category"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Description  string                `json:"description"`
	ReceiptURL   string                `json:"receipt_url,omitempty"`
	SplitMethod  string                `json:"split_method"`
	Date         time.Time             `json:"date"`
	Participants []ParticipantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type ParticipantResponse struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	ShareAmount     int64       `json:"share_amount"`
	SharePercentage *float64    `json:"share_percentage,omitempty"`
	IsSettled       bool        `json:"is_settled"`
	SettledAt       *time.Time  `json:"settled_at,omitempty"`
	User            UserSummary `json:"user"`
}

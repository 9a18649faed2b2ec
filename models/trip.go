package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip statuses and visibility
const (
	TripDraft     = "draft"
	TripPlanned   = "planned"
	TripOngoing   = "ongoing"
	TripCompleted = "completed"
	TripCancelled = "cancelled"
)

type Trip struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	Title         string          `gorm:"not null;size:200" json:"title"`
	Description   string          `json:"description,omitempty"`
	Destination   string          `gorm:"not null;size:200" json:"destination"`
	CoverImageURL string          `json:"cover_image_url,omitempty"`
	StartDate     *time.Time      `gorm:"type:date" json:"start_date,omitempty"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date,omitempty"`
	Status        string          `gorm:"default:draft;size:20" json:"status"`
	Visibility    string          `gorm:"default:private;size:20" json:"visibility"`
	Budget        int64           `json:"budget,omitempty"`
	Currency      string          `gorm:"default:USD;size:3" json:"currency"`
	Itinerary     []ItineraryItem `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE" json:"itinerary,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type ItineraryItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TripID      uuid.UUID `gorm:"type:uuid;index" json:"trip_id"`
	DayNumber   int       `gorm:"not null" json:"day_number"`
	OrderIndex  int       `gorm:"not null" json:"order_index"`
	Type        string    `gorm:"not null;size:20" json:"type"` // activity, accommodation, transportation, food, other
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartTime   string    `gorm:"size:5" json:"start_time,omitempty"` // HH:MM
	EndTime     string    `gorm:"size:5" json:"end_time,omitempty"`
	Cost        int64     `json:"cost,omitempty"`
	Currency    string    `gorm:"default:USD;size:3" json:"currency"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *ItineraryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateTripRequest struct {
	Title         string `json:"title" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	Description   string `json:"description"`
	StartDate     string `json:"start_date"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`
	Budget        int64  `json:"budget"`
	Currency      string `json:"currency"`
	Status        string `json:"status" binding:"omitempty,oneof=draft planned ongoing completed cancelled"`
	Visibility    string `json:"visibility" binding:"omitempty,oneof=private group public"`
	CoverImageURL string `json:"cover_image_url"`
}

type UpdateTripRequest struct {
	Title         string `json:"title"`
	Destination   string `json:"destination"`
	Description   string `json:"description"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Budget        int64  `json:"budget"`
	Currency      string `json:"currency"`
	Status        string `json:"status" binding:"omitempty,oneof=draft planned ongoing completed cancelled"`
	Visibility    string `json:"visibility" binding:"omitempty,oneof=private group public"`
	CoverImageURL string `json:"cover_image_url"`
}

type CreateItineraryItemRequest struct {
	DayNumber   int    `json:"day_number" binding:"required,gt=0"`
	OrderIndex  int    `json:"order_index"`
	Type        string `json:"type" binding:"required,oneof=activity accommodation transportation food other"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Cost        int64  `json:"cost"`
	Currency    string `json:"currency"`
	Notes       string `json:"notes"`
}

type UpdateItineraryItemRequest struct {
	DayNumber   int    `json:"day_number"`
	OrderIndex  *int   `json:"order_index"`
	Type        string `json:"type" binding:"omitempty,oneof=activity accommodation transportation food other"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Cost        int64  `json:"cost"`
	Notes       string `json:"notes"`
}

type ReorderItemsRequest struct {
	Items []ReorderItemInput `json:"items" binding:"required,min=1"`
}

type ReorderItemInput struct {
	ID         string `json:"id" binding:"required"`
	DayNumber  int    `json:"day_number" binding:"required,gt=0"`
	OrderIndex int    `json:"order_index"`
}

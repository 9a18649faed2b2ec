package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group roles. Admins manage membership and can edit anything; editors can
// add and edit expenses; viewers can only read.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type TravelGroup struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TripID        *uuid.UUID    `gorm:"type:uuid" json:"trip_id,omitempty"`
	Name          string        `gorm:"not null;size:100" json:"name"`
	Description   string        `json:"description,omitempty"`
	CoverImageURL string        `json:"cover_image_url,omitempty"`
	CreatedBy     uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	Creator       User          `gorm:"foreignKey:CreatedBy" json:"-"`
	Members       []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (g *TravelGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type GroupMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID  uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_group_user" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_group_user" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     string    `gorm:"default:viewer;size:20" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type GroupInvitation struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID   `gorm:"type:uuid;index" json:"group_id"`
	Group     TravelGroup `gorm:"foreignKey:GroupID" json:"-"`
	InvitedBy uuid.UUID   `gorm:"type:uuid" json:"invited_by"`
	Inviter   User        `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	Email     string      `gorm:"size:255" json:"email,omitempty"`
	Token     string      `gorm:"uniqueIndex;not null;size:64" json:"-"`
	Status    string      `gorm:"default:pending;size:20" json:"status"` // pending, accepted, declined, expired
	Role      string      `gorm:"default:viewer;size:20" json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

func (i *GroupInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateGroupRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	TripID        string `json:"trip_id"`
	CoverImageURL string `json:"cover_image_url"`
}

type UpdateGroupRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	TripID        string `json:"trip_id"`
	CoverImageURL string `json:"cover_image_url"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin editor viewer"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin editor viewer"`
}

// Response structs
type GroupResponse struct {
	ID            uuid.UUID             `json:"id"`
	TripID        *uuid.UUID            `json:"trip_id,omitempty"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	CoverImageURL string                `json:"cover_image_url,omitempty"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	Members       []GroupMemberResponse `json:"members"`
	CreatedAt     time.Time             `json:"created_at"`
}

type GroupMemberResponse struct {
	ID       uuid.UUID   `json:"id"`
	UserID   uuid.UUID   `json:"user_id"`
	Role     string      `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	User     UserSummary `json:"user"`
}

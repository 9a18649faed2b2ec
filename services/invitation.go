package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"
	"tripmate-backend/database"
	"tripmate-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound = errors.New("invalid or expired invitation")
	ErrInvitationUsed     = errors.New("invitation already responded to")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrAlreadyMember      = errors.New("already a member of this group")
)

const invitationValidity = 7 * 24 * time.Hour

func newInvitationToken() string {
	buf := make([]byte, 24)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// InviteToGroup creates a pending invitation and emails the join link.
func InviteToGroup(groupID, invitedBy uuid.UUID, email, role string) (*models.GroupInvitation, error) {
	if role == "" {
		role = models.RoleViewer
	}

	invitation := models.GroupInvitation{
		GroupID:   groupID,
		InvitedBy: invitedBy,
		Email:     email,
		Token:     newInvitationToken(),
		Role:      role,
		ExpiresAt: time.Now().Add(invitationValidity),
	}
	if err := database.DB.Create(&invitation).Error; err != nil {
		return nil, err
	}

	var inviter models.User
	var group models.TravelGroup
	database.DB.First(&inviter, invitedBy)
	database.DB.First(&group, groupID)

	go GetNotificationService().SendInvitationEmail(invitation, inviter, group)
	log.Printf("📨 Invitation sent for group %s to %s", group.Name, email)

	return &invitation, nil
}

// AcceptInvitation validates the token and adds the user as a member with
// the invited role. Expired invitations are marked as such on first touch.
func AcceptInvitation(token string, userID uuid.UUID) (*models.TravelGroup, string, error) {
	var invitation models.GroupInvitation
	err := database.DB.Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvitationNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if invitation.Status != "pending" {
		return nil, "", ErrInvitationUsed
	}
	if time.Now().After(invitation.ExpiresAt) {
		database.DB.Model(&invitation).Update("status", "expired")
		return nil, "", ErrInvitationExpired
	}
	if IsGroupMember(invitation.GroupID, userID) {
		return nil, "", ErrAlreadyMember
	}

	var group models.TravelGroup
	if err := database.DB.First(&group, invitation.GroupID).Error; err != nil {
		return nil, "", ErrInvitationNotFound
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		member := models.GroupMember{
			GroupID: invitation.GroupID,
			UserID:  userID,
			Role:    invitation.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", "accepted").Error
	})
	if err != nil {
		return nil, "", err
	}

	InvalidateMembership(invitation.GroupID, userID)

	return &group, invitation.Role, nil
}

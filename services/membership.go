package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tripmate-backend/database"
	"tripmate-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role lookups gate every request, so they are cached briefly in Redis
// when it is available. The cache is invalidated on any membership change.
const membershipCacheTTL = time.Minute

func membershipKey(groupID, userID uuid.UUID) string {
	return fmt.Sprintf("member:%s:%s", groupID, userID)
}

// GroupRole returns the caller's role in the group, or "" when they are
// not a member.
func GroupRole(groupID, userID uuid.UUID) string {
	ctx := context.Background()

	if database.Redis != nil {
		if role, err := database.Redis.Get(ctx, membershipKey(groupID, userID)).Result(); err == nil {
			return role
		}
	}

	var member models.GroupMember
	err := database.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ""
	}
	if err != nil {
		return ""
	}

	if database.Redis != nil {
		database.Redis.Set(ctx, membershipKey(groupID, userID), member.Role, membershipCacheTTL)
	}

	return member.Role
}

// InvalidateMembership drops the cached role after a join, role change or
// removal.
func InvalidateMembership(groupID, userID uuid.UUID) {
	if database.Redis != nil {
		database.Redis.Del(context.Background(), membershipKey(groupID, userID))
	}
}

func IsGroupMember(groupID, userID uuid.UUID) bool {
	return GroupRole(groupID, userID) != ""
}

func IsGroupAdmin(groupID, userID uuid.UUID) bool {
	return GroupRole(groupID, userID) == models.RoleAdmin
}

// CanEditGroup reports whether the user may add or edit group content
// (expenses, details): admins and editors can, viewers cannot.
func CanEditGroup(groupID, userID uuid.UUID) bool {
	role := GroupRole(groupID, userID)
	return role == models.RoleAdmin || role == models.RoleEditor
}

package handlers

import (
	"errors"
	"net/http"
	"tripmate-backend/database"
	"tripmate-backend/models"
	"tripmate-backend/services"
	"tripmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func buildGroupResponse(groupID uuid.UUID) models.GroupResponse {
	var group models.TravelGroup
	database.DB.First(&group, groupID)

	var members []models.GroupMember
	database.DB.Preload("User").Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members)

	memberResponses := make([]models.GroupMemberResponse, 0, len(members))
	for _, m := range members {
		memberResponses = append(memberResponses, models.GroupMemberResponse{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			User:     m.User.ToSummary(),
		})
	}

	return models.GroupResponse{
		ID:            group.ID,
		TripID:        group.TripID,
		Name:          group.Name,
		Description:   group.Description,
		CoverImageURL: group.CoverImageURL,
		CreatedBy:     group.CreatedBy,
		Members:       memberResponses,
		CreatedAt:     group.CreatedAt,
	}
}

// POST /api/groups
func CreateGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	group := models.TravelGroup{
		Name:          req.Name,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		CreatedBy:     userID,
	}
	if req.TripID != "" {
		tripID, err := uuid.Parse(req.TripID)
		if err != nil {
			utils.BadRequest(c, "Invalid trip ID")
			return
		}
		group.TripID = &tripID
	}

	if err := database.DB.Create(&group).Error; err != nil {
		utils.InternalError(c, "Failed to create group")
		return
	}

	// Creator joins as admin
	database.DB.Create(&models.GroupMember{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.RoleAdmin,
	})

	c.JSON(http.StatusCreated, gin.H{"group": buildGroupResponse(group.ID)})
}

// GET /api/groups
func GetGroups(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.GroupMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	responses := make([]models.GroupResponse, 0, len(memberships))
	for _, m := range memberships {
		responses = append(responses, buildGroupResponse(m.GroupID))
	}

	c.JSON(http.StatusOK, gin.H{"groups": responses})
}

// GET /api/groups/:id
func GetGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": buildGroupResponse(groupID)})
}

// PATCH /api/groups/:id
func UpdateGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.CanEditGroup(groupID, userID) {
		utils.Forbidden(c, "You do not have permission to edit this group")
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.CoverImageURL != "" {
		updates["cover_image_url"] = req.CoverImageURL
	}
	if req.TripID != "" {
		tripID, err := uuid.Parse(req.TripID)
		if err != nil {
			utils.BadRequest(c, "Invalid trip ID")
			return
		}
		updates["trip_id"] = tripID
	}

	if len(updates) > 0 {
		database.DB.Model(&models.TravelGroup{}).Where("id = ?", groupID).Updates(updates)
	}

	c.JSON(http.StatusOK, gin.H{"group": buildGroupResponse(groupID)})
}

// DELETE /api/groups/:id
func DeleteGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only group admins can delete a group")
		return
	}

	// Cascade: members, invitations, expenses with their participants,
	// and settlements all belong to the group's lifecycle.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var expenseIDs []uuid.UUID
		if err := tx.Model(&models.SharedExpense{}).Where("group_id = ?", groupID).Pluck("id", &expenseIDs).Error; err != nil {
			return err
		}
		if len(expenseIDs) > 0 {
			if err := tx.Where("expense_id IN ?", expenseIDs).Delete(&models.ExpenseParticipant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", expenseIDs).Delete(&models.SharedExpense{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{&models.Settlement{}, &models.GroupInvitation{}, &models.GroupMember{}} {
			if err := tx.Where("group_id = ?", groupID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.TravelGroup{}, groupID).Error
	})
	if err != nil {
		utils.InternalError(c, "Failed to delete group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/groups/:id/members
func GetGroupMembers(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": buildGroupResponse(groupID).Members})
}

// PATCH /api/groups/:id/members/:memberId
func UpdateMemberRole(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		utils.BadRequest(c, "Invalid member ID")
		return
	}

	if !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only group admins can update member roles")
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var member models.GroupMember
	if err := database.DB.Where("id = ? AND group_id = ?", memberID, groupID).First(&member).Error; err != nil {
		utils.NotFound(c, "Member not found")
		return
	}

	// A group must always have at least one admin
	if member.Role == models.RoleAdmin && req.Role != models.RoleAdmin {
		var adminCount int64
		database.DB.Model(&models.GroupMember{}).Where("group_id = ? AND role = ?", groupID, models.RoleAdmin).Count(&adminCount)
		if adminCount <= 1 {
			utils.BadRequest(c, "Cannot demote the last admin. Promote another member first.")
			return
		}
	}

	if err := database.DB.Model(&member).Update("role", req.Role).Error; err != nil {
		utils.InternalError(c, "Failed to update member")
		return
	}
	services.InvalidateMembership(groupID, member.UserID)

	var user models.User
	database.DB.First(&user, member.UserID)
	c.JSON(http.StatusOK, gin.H{"member": models.GroupMemberResponse{
		ID:       member.ID,
		UserID:   member.UserID,
		Role:     req.Role,
		JoinedAt: member.JoinedAt,
		User:     user.ToSummary(),
	}})
}

// DELETE /api/groups/:id/members/:memberId
func RemoveMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		utils.BadRequest(c, "Invalid member ID")
		return
	}

	var member models.GroupMember
	if err := database.DB.Where("id = ? AND group_id = ?", memberID, groupID).First(&member).Error; err != nil {
		utils.NotFound(c, "Member not found")
		return
	}

	// Admins can remove anyone; members can remove themselves
	if !services.IsGroupAdmin(groupID, userID) && member.UserID != userID {
		utils.Forbidden(c, "Only admins can remove other members")
		return
	}

	if member.Role == models.RoleAdmin {
		var adminCount int64
		database.DB.Model(&models.GroupMember{}).Where("group_id = ? AND role = ?", groupID, models.RoleAdmin).Count(&adminCount)
		if adminCount <= 1 {
			utils.BadRequest(c, "Cannot remove the last admin")
			return
		}
	}

	if err := database.DB.Delete(&member).Error; err != nil {
		utils.InternalError(c, "Failed to remove member")
		return
	}
	services.InvalidateMembership(groupID, member.UserID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/groups/:id/invitations
func CreateInvitation(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only group admins can send invitations")
		return
	}

	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	invitation, err := services.InviteToGroup(groupID, userID, req.Email, req.Role)
	if err != nil {
		utils.InternalError(c, "Failed to create invitation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

// GET /api/groups/:id/invitations
func GetInvitations(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only group admins can view invitations")
		return
	}

	var invitations []models.GroupInvitation
	database.DB.Preload("Inviter").
		Where("group_id = ? AND status = ?", groupID, "pending").
		Order("created_at DESC").
		Find(&invitations)

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// DELETE /api/groups/:id/invitations/:invitationId
func RevokeInvitation(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	invitationID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		utils.BadRequest(c, "Invalid invitation ID")
		return
	}

	if !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only group admins can revoke invitations")
		return
	}

	result := database.DB.Where("id = ? AND group_id = ?", invitationID, groupID).Delete(&models.GroupInvitation{})
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Invitation not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/groups/join/:token
func JoinGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	token := c.Param("token")

	group, role, err := services.AcceptInvitation(token, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvitationNotFound):
			utils.NotFound(c, "Invalid or expired invitation")
		case errors.Is(err, services.ErrInvitationUsed),
			errors.Is(err, services.ErrInvitationExpired),
			errors.Is(err, services.ErrAlreadyMember):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalError(c, "Failed to join group")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": buildGroupResponse(group.ID), "role": role})
}

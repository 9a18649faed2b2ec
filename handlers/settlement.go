package handlers

import (
	"errors"
	"net/http"
	"tripmate-backend/database"
	"tripmate-backend/ledger"
	"tripmate-backend/models"
	"tripmate-backend/services"
	"tripmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func settlementResponse(s *models.Settlement) models.SettlementResponse {
	return models.SettlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Currency:   s.Currency,
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
		FromUser:   s.FromUser.ToSummary(),
		ToUser:     s.ToUser.ToSummary(),
	}
}

// GET /api/groups/:id/settlements
func GetGroupSettlements(c *gin.Context) {
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

	settlements, err := services.Expenses().ListSettlements(groupID)
	if err != nil {
		utils.InternalError(c, "Failed to load settlements")
		return
	}

	responses := make([]models.SettlementResponse, 0, len(settlements))
	for i := range settlements {
		responses = append(responses, settlementResponse(&settlements[i]))
	}

	c.JSON(http.StatusOK, gin.H{"settlements": responses})
}

// POST /api/groups/:id/settlements
func CreateSettlement(c *gin.Context) {
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

	var req models.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	settlement, err := services.Expenses().RecordSettlement(groupID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfSettlement):
			utils.Forbidden(c, "Cannot create a settlement with yourself")
		case errors.Is(err, services.ErrNotGroupMember):
			utils.Forbidden(c, "Recipient is not a member of this group")
		case errors.Is(err, ledger.ErrInvalidInput):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalError(c, "Failed to create settlement")
		}
		return
	}

	var group models.TravelGroup
	database.DB.First(&group, groupID)
	go services.GetNotificationService().NotifySettlement(*settlement, settlement.FromUser, settlement.ToUser, group)

	c.JSON(http.StatusCreated, gin.H{"settlement": settlementResponse(settlement)})
}

// GET /api/groups/:id/balances
func GetGroupBalances(c *gin.Context) {
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

	balances, err := services.Expenses().GroupBalances(groupID)
	if err != nil {
		utils.InternalError(c, "Failed to compute balances")
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

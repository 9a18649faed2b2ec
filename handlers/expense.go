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

func expenseResponse(e *models.SharedExpense) models.ExpenseResponse {
	resp := models.ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		PaidByUser:  e.Payer.ToSummary(),
		Category:    e.Category,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		ReceiptURL:  e.ReceiptURL,
		SplitMethod: e.SplitMethod,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for _, p := range e.Participants {
		resp.Participants = append(resp.Participants, models.ParticipantResponse{
			ID:              p.ID,
			UserID:          p.UserID,
			ShareAmount:     p.ShareAmount,
			SharePercentage: p.SharePercentage,
			IsSettled:       p.IsSettled,
			SettledAt:       p.SettledAt,
			User:            p.User.ToSummary(),
		})
	}
	return resp
}

// GET /api/groups/:id/expenses
func GetGroupExpenses(c *gin.Context) {
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

	var page utils.PaginationQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expenses, err := services.Expenses().ListExpenses(groupID, page.Limit, page.Offset())
	if err != nil {
		utils.InternalError(c, "Failed to load expenses")
		return
	}

	responses := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, expenseResponse(&expenses[i]))
	}

	c.JSON(http.StatusOK, gin.H{"expenses": responses})
}

// GET /api/groups/:id/expenses/:expenseId
func GetExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	expense, err := services.Expenses().GetExpense(groupID, expenseID)
	if err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			utils.NotFound(c, "Expense not found")
			return
		}
		utils.InternalError(c, "Failed to load expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expenseResponse(expense)})
}

// POST /api/groups/:id/expenses
func CreateExpense(c *gin.Context) {
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
	if !services.CanEditGroup(groupID, userID) {
		utils.Forbidden(c, "You do not have permission to add expenses")
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expense, err := services.Expenses().CreateExpense(groupID, userID, req)
	if err != nil {
		handleExpenseError(c, err)
		return
	}

	var payer models.User
	var group models.TravelGroup
	database.DB.First(&payer, userID)
	database.DB.First(&group, groupID)
	go services.GetNotificationService().NotifyExpenseAdded(*expense, expense.Participants, payer, group)

	c.JSON(http.StatusCreated, gin.H{"expense": expenseResponse(expense)})
}

// PATCH /api/groups/:id/expenses/:expenseId
func UpdateExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	expense, err := services.Expenses().GetExpense(groupID, expenseID)
	if err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	// Only the original payer or a group admin may edit
	if expense.PaidBy != userID && !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "You can only edit expenses you created")
		return
	}

	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updated, err := services.Expenses().UpdateExpense(groupID, expenseID, req)
	if err != nil {
		handleExpenseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expenseResponse(updated)})
}

// DELETE /api/groups/:id/expenses/:expenseId
func DeleteExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	expense, err := services.Expenses().GetExpense(groupID, expenseID)
	if err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if expense.PaidBy != userID && !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "You can only delete expenses you created")
		return
	}

	if err := services.Expenses().DeleteExpense(groupID, expenseID); err != nil {
		utils.InternalError(c, "Failed to delete expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PATCH /api/groups/:id/expenses/:expenseId/settle/:participantId
func SettleParticipant(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}
	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		utils.BadRequest(c, "Invalid participant ID")
		return
	}

	if !services.IsGroupMember(groupID, userID) {
		utils.Forbidden(c, "You are not a member of this group")
		return
	}

	expense, err := services.Expenses().GetExpense(groupID, expenseID)
	if err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if expense.PaidBy != userID && !services.IsGroupAdmin(groupID, userID) {
		utils.Forbidden(c, "Only the person who paid or an admin can mark debts as settled")
		return
	}

	var req models.SettleParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updated, err := services.Expenses().SetParticipantSettled(groupID, expenseID, participantID, *req.IsSettled)
	if err != nil {
		if errors.Is(err, services.ErrParticipantNotFound) {
			utils.NotFound(c, "Participant not found")
			return
		}
		utils.InternalError(c, "Failed to update participant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expenseResponse(updated)})
}

// handleExpenseError maps service errors from expense mutations to
// statuses: bad split input and non-member participants are caller errors.
func handleExpenseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidSplit),
		errors.Is(err, services.ErrNotGroupMember):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrExpenseNotFound):
		utils.NotFound(c, "Expense not found")
	default:
		utils.InternalError(c, "Failed to save expense")
	}
}

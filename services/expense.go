package services

import (
	"errors"
	"fmt"
	"time"
	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/ledger"
	"tripmate-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNotGroupMember      = errors.New("user is not a member of this group")
	ErrSelfSettlement      = errors.New("cannot create a settlement with yourself")
)

// ExpenseService owns the mutation entry points that keep expense and
// participant rows consistent with the split calculator, and the balance
// query that derives net positions from them. All validation happens
// before any write; participant rows are always rewritten as a unit.
type ExpenseService struct {
	db *gorm.DB
}

func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

var expenseService *ExpenseService

func Expenses() *ExpenseService {
	if expenseService == nil {
		expenseService = NewExpenseService(database.DB)
	}
	return expenseService
}

// memberIDs returns the group's current membership in join order.
func (s *ExpenseService) memberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	var members []models.GroupMember
	if err := s.db.Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// checkParticipants parses participant user IDs and verifies every one of
// them is a current group member.
func (s *ExpenseService) checkParticipants(groupID uuid.UUID, inputs []models.ParticipantInput) ([]uuid.UUID, error) {
	memberIDs, err := s.memberIDs(groupID)
	if err != nil {
		return nil, err
	}
	memberSet := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
	}

	userIDs := make([]uuid.UUID, len(inputs))
	for i, p := range inputs {
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user ID %q", ledger.ErrInvalidInput, p.UserID)
		}
		if !memberSet[uid] {
			return nil, fmt.Errorf("%w: user %s", ErrNotGroupMember, uid)
		}
		userIDs[i] = uid
	}
	return userIDs, nil
}

func shareSpecs(inputs []models.ParticipantInput) []ledger.ShareSpec {
	specs := make([]ledger.ShareSpec, len(inputs))
	for i, p := range inputs {
		specs[i] = ledger.ShareSpec{Amount: p.ShareAmount, Percentage: p.SharePercentage}
	}
	return specs
}

// buildParticipants turns computed shares into participant rows. The
// payer's own row is marked settled at creation time: a payer cannot owe
// themselves.
func buildParticipants(expenseID, paidBy uuid.UUID, method string, userIDs []uuid.UUID, inputs []models.ParticipantInput, shares []int64) []models.ExpenseParticipant {
	now := time.Now()
	rows := make([]models.ExpenseParticipant, len(userIDs))
	for i, uid := range userIDs {
		row := models.ExpenseParticipant{
			ExpenseID:   expenseID,
			UserID:      uid,
			ShareAmount: shares[i],
		}
		if method == models.SplitPercentage {
			pct := inputs[i].SharePercentage
			row.SharePercentage = &pct
		}
		if uid == paidBy {
			row.IsSettled = true
			row.SettledAt = &now
		}
		rows[i] = row
	}
	return rows
}

func parseExpenseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ledger.ErrInvalidInput, value)
	}
	return t, nil
}

// CreateExpense validates the category and participant list, runs the
// split calculator and persists the expense together with its
// participant rows.
func (s *ExpenseService) CreateExpense(groupID, paidBy uuid.UUID, req models.CreateExpenseRequest) (*models.SharedExpense, error) {
	if !models.ValidExpenseCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidInput, req.Category)
	}

	userIDs, err := s.checkParticipants(groupID, req.Participants)
	if err != nil {
		return nil, err
	}

	shares, err := ledger.ComputeShares(req.SplitMethod, req.Amount, shareSpecs(req.Participants))
	if err != nil {
		return nil, err
	}

	date, err := parseExpenseDate(req.Date)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = config.AppConfig.DefaultCurrency
	}

	expense := models.SharedExpense{
		GroupID:     groupID,
		PaidBy:      paidBy,
		Category:    req.Category,
		Amount:      req.Amount,
		Currency:    currency,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		SplitMethod: req.SplitMethod,
		Date:        date,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		participants := buildParticipants(expense.ID, paidBy, req.SplitMethod, userIDs, req.Participants, shares)
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetExpense(groupID, expense.ID)
}

// UpdateExpense applies a partial update. When the participant list, split
// method or amount changes, participant rows are deleted and recreated
// from a fresh split rather than patched in place, so the shares always
// sum back to the expense amount.
func (s *ExpenseService) UpdateExpense(groupID, expenseID uuid.UUID, req models.UpdateExpenseRequest) (*models.SharedExpense, error) {
	expense, err := s.findExpense(groupID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Category != "" {
		if !models.ValidExpenseCategory(req.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidInput, req.Category)
		}
		updates["category"] = req.Category
	}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ReceiptURL != nil {
		updates["receipt_url"] = *req.ReceiptURL
	}
	if req.SplitMethod != "" {
		updates["split_method"] = req.SplitMethod
	}
	if req.Date != "" {
		date, err := parseExpenseDate(req.Date)
		if err != nil {
			return nil, err
		}
		updates["date"] = date
	}

	resplit := len(req.Participants) > 0 || req.SplitMethod != "" || req.Amount > 0

	amount := expense.Amount
	if req.Amount > 0 {
		amount = req.Amount
	}
	method := expense.SplitMethod
	if req.SplitMethod != "" {
		method = req.SplitMethod
	}

	var userIDs []uuid.UUID
	var inputs []models.ParticipantInput
	var shares []int64
	if resplit {
		inputs = req.Participants
		if len(inputs) == 0 {
			// Amount or method changed without a new participant list:
			// resplit across the existing participants in stored order.
			var existing []models.ExpenseParticipant
			if err := s.db.Where("expense_id = ?", expenseID).Order("id ASC").Find(&existing).Error; err != nil {
				return nil, err
			}
			for _, p := range existing {
				in := models.ParticipantInput{UserID: p.UserID.String(), ShareAmount: p.ShareAmount}
				if p.SharePercentage != nil {
					in.SharePercentage = *p.SharePercentage
				}
				inputs = append(inputs, in)
			}
		}

		userIDs, err = s.checkParticipants(groupID, inputs)
		if err != nil {
			return nil, err
		}
		shares, err = ledger.ComputeShares(method, amount, shareSpecs(inputs))
		if err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SharedExpense{}).Where("id = ?", expenseID).Updates(updates).Error; err != nil {
			return err
		}
		if !resplit {
			return nil
		}
		if err := tx.Where("expense_id = ?", expenseID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		participants := buildParticipants(expenseID, expense.PaidBy, method, userIDs, inputs, shares)
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetExpense(groupID, expenseID)
}

// DeleteExpense removes the expense and cascades to its participant rows.
// Balances are derived fresh on the next read, so nothing is recomputed.
func (s *ExpenseService) DeleteExpense(groupID, expenseID uuid.UUID) error {
	expense, err := s.findExpense(groupID, expenseID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expenseID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(expense).Error
	})
}

// SetParticipantSettled flips one participant's settled flag, stamping
// settledAt when set and clearing it when unset.
func (s *ExpenseService) SetParticipantSettled(groupID, expenseID, participantID uuid.UUID, settled bool) (*models.SharedExpense, error) {
	if _, err := s.findExpense(groupID, expenseID); err != nil {
		return nil, err
	}

	var participant models.ExpenseParticipant
	err := s.db.Where("id = ? AND expense_id = ?", participantID, expenseID).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"is_settled": settled}
	if settled {
		updates["settled_at"] = time.Now()
	} else {
		updates["settled_at"] = nil
	}
	if err := s.db.Model(&participant).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetExpense(groupID, expenseID)
}

// RecordSettlement inserts an immutable direct-payment row. The recipient
// must be a current member and cannot be the payer.
func (s *ExpenseService) RecordSettlement(groupID, fromUserID uuid.UUID, req models.CreateSettlementRequest) (*models.Settlement, error) {
	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID %q", ledger.ErrInvalidInput, req.ToUserID)
	}
	if toUserID == fromUserID {
		return nil, ErrSelfSettlement
	}

	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, toUserID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNotGroupMember, toUserID)
	}

	currency := req.Currency
	if currency == "" {
		currency = config.AppConfig.DefaultCurrency
	}

	settlement := models.Settlement{
		GroupID:    groupID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     req.Amount,
		Currency:   currency,
		Note:       req.Note,
	}
	if err := s.db.Create(&settlement).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("FromUser").Preload("ToUser").First(&settlement, settlement.ID).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

// GetExpense loads one expense with participants and users, verifying it
// belongs to the group.
func (s *ExpenseService) GetExpense(groupID, expenseID uuid.UUID) (*models.SharedExpense, error) {
	var expense models.SharedExpense
	err := s.db.Preload("Payer").Preload("Participants.User").
		Where("id = ? AND group_id = ?", expenseID, groupID).
		First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListExpenses returns a page of the group's expenses, most recent first.
func (s *ExpenseService) ListExpenses(groupID uuid.UUID, limit, offset int) ([]models.SharedExpense, error) {
	var expenses []models.SharedExpense
	err := s.db.Preload("Payer").Preload("Participants.User").
		Where("group_id = ?", groupID).
		Order("date DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

// ListSettlements returns the group's settlements, most recent first.
func (s *ExpenseService) ListSettlements(groupID uuid.UUID) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := s.db.Preload("FromUser").Preload("ToUser").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&settlements).Error
	return settlements, err
}

// GroupBalances scans the group's full expense and settlement history and
// derives each member's net position. The result is computed from scratch
// on every call and never cached.
func (s *ExpenseService) GroupBalances(groupID uuid.UUID) ([]models.UserBalance, error) {
	var members []models.GroupMember
	if err := s.db.Preload("User").Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}

	memberIDs := make([]uuid.UUID, len(members))
	users := make(map[uuid.UUID]models.User, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		users[m.UserID] = m.User
	}

	var expenses []models.SharedExpense
	if err := s.db.Preload("Participants").Where("group_id = ?", groupID).Find(&expenses).Error; err != nil {
		return nil, err
	}

	var settlements []models.Settlement
	if err := s.db.Where("group_id = ?", groupID).Find(&settlements).Error; err != nil {
		return nil, err
	}

	records := make([]ledger.ExpenseRecord, len(expenses))
	for i, e := range expenses {
		rec := ledger.ExpenseRecord{PaidBy: e.PaidBy}
		for _, p := range e.Participants {
			rec.Shares = append(rec.Shares, ledger.Share{
				UserID:    p.UserID,
				Amount:    p.ShareAmount,
				IsSettled: p.IsSettled,
			})
		}
		records[i] = rec
	}

	transfers := make([]ledger.Transfer, len(settlements))
	for i, st := range settlements {
		transfers[i] = ledger.Transfer{From: st.FromUserID, To: st.ToUserID, Amount: st.Amount}
	}

	matrix := ledger.BuildDebtMatrix(memberIDs, records, transfers)
	positions := ledger.NetBalances(memberIDs, matrix)

	balances := make([]models.UserBalance, len(positions))
	for i, pos := range positions {
		user := users[pos.UserID]
		balance := models.UserBalance{
			UserID:     pos.UserID,
			User:       user.ToSummary(),
			Owes:       make([]models.BalanceEntry, 0, len(pos.Owes)),
			IsOwed:     make([]models.BalanceEntry, 0, len(pos.IsOwed)),
			NetBalance: pos.Net,
		}
		for _, e := range pos.Owes {
			balance.Owes = append(balance.Owes, models.BalanceEntry{
				UserID:   e.UserID,
				UserName: users[e.UserID].Name,
				Amount:   e.Amount,
			})
		}
		for _, e := range pos.IsOwed {
			balance.IsOwed = append(balance.IsOwed, models.BalanceEntry{
				UserID:   e.UserID,
				UserName: users[e.UserID].Name,
				Amount:   e.Amount,
			})
		}
		balances[i] = balance
	}

	return balances, nil
}

func (s *ExpenseService) findExpense(groupID, expenseID uuid.UUID) (*models.SharedExpense, error) {
	var expense models.SharedExpense
	err := s.db.Where("id = ? AND group_id = ?", expenseID, groupID).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

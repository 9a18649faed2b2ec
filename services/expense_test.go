package services

import (
	"fmt"
	"testing"
	"time"
	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/ledger"
	"tripmate-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testFixture struct {
	svc   *ExpenseService
	db    *gorm.DB
	group models.TravelGroup
	alice models.User
	bob   models.User
	carol models.User
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	config.Load()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &testFixture{svc: NewExpenseService(db), db: db}

	f.alice = f.createUser(t, "Alice")
	f.bob = f.createUser(t, "Bob")
	f.carol = f.createUser(t, "Carol")

	f.group = models.TravelGroup{Name: "Lisbon 2026", CreatedBy: f.alice.ID}
	require.NoError(t, db.Create(&f.group).Error)

	base := time.Now().Add(-time.Hour)
	f.addMember(t, f.alice, models.RoleAdmin, base)
	f.addMember(t, f.bob, models.RoleEditor, base.Add(time.Minute))
	f.addMember(t, f.carol, models.RoleViewer, base.Add(2*time.Minute))

	return f
}

func (f *testFixture) createUser(t *testing.T, name string) models.User {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Name:         name,
		PasswordHash: "x",
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *testFixture) addMember(t *testing.T, user models.User, role string, joinedAt time.Time) {
	t.Helper()
	member := models.GroupMember{
		GroupID:  f.group.ID,
		UserID:   user.ID,
		Role:     role,
		JoinedAt: joinedAt,
	}
	require.NoError(t, f.db.Create(&member).Error)
}

func (f *testFixture) equalExpense(t *testing.T, amount int64) *models.SharedExpense {
	t.Helper()
	expense, err := f.svc.CreateExpense(f.group.ID, f.alice.ID, models.CreateExpenseRequest{
		Category:    "food",
		Amount:      amount,
		Description: "Dinner",
		SplitMethod: models.SplitEqual,
		Date:        "2026-08-15",
		Participants: []models.ParticipantInput{
			{UserID: f.alice.ID.String()},
			{UserID: f.bob.ID.String()},
			{UserID: f.carol.ID.String()},
		},
	})
	require.NoError(t, err)
	return expense
}

func shareByUser(expense *models.SharedExpense, userID uuid.UUID) *models.ExpenseParticipant {
	for i := range expense.Participants {
		if expense.Participants[i].UserID == userID {
			return &expense.Participants[i]
		}
	}
	return nil
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	f := newTestFixture(t)

	expense := f.equalExpense(t, 100)

	require.Len(t, expense.Participants, 3)
	var sum int64
	for _, p := range expense.Participants {
		sum += p.ShareAmount
	}
	assert.Equal(t, int64(100), sum)

	// Remainder lands on the first listed participant.
	assert.Equal(t, int64(34), shareByUser(expense, f.alice.ID).ShareAmount)
	assert.Equal(t, int64(33), shareByUser(expense, f.bob.ID).ShareAmount)
	assert.Equal(t, int64(33), shareByUser(expense, f.carol.ID).ShareAmount)

	assert.Equal(t, config.AppConfig.DefaultCurrency, expense.Currency)
}

func TestCreateExpensePayerRowSettled(t *testing.T) {
	f := newTestFixture(t)

	expense := f.equalExpense(t, 90)

	payer := shareByUser(expense, f.alice.ID)
	require.NotNil(t, payer)
	assert.True(t, payer.IsSettled)
	assert.NotNil(t, payer.SettledAt)

	for _, other := range []uuid.UUID{f.bob.ID, f.carol.ID} {
		p := shareByUser(expense, other)
		assert.False(t, p.IsSettled)
		assert.Nil(t, p.SettledAt)
	}
}

func TestCreateExpenseRejectsNonMember(t *testing.T) {
	f := newTestFixture(t)
	outsider := f.createUser(t, "Dave")

	_, err := f.svc.CreateExpense(f.group.ID, f.alice.ID, models.CreateExpenseRequest{
		Category:    "food",
		Amount:      100,
		Description: "Dinner",
		SplitMethod: models.SplitEqual,
		Date:        "2026-08-15",
		Participants: []models.ParticipantInput{
			{UserID: f.alice.ID.String()},
			{UserID: outsider.ID.String()},
		},
	})
	require.ErrorIs(t, err, ErrNotGroupMember)

	// Nothing was written.
	var count int64
	f.db.Model(&models.SharedExpense{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateExpenseUnknownCategory(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.svc.CreateExpense(f.group.ID, f.alice.ID, models.CreateExpenseRequest{
		Category:    "gambling",
		Amount:      100,
		Description: "Casino night",
		SplitMethod: models.SplitEqual,
		Date:        "2026-08-15",
		Participants: []models.ParticipantInput{
			{UserID: f.alice.ID.String()},
			{UserID: f.bob.ID.String()},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	var count int64
	f.db.Model(&models.SharedExpense{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateExpenseUnknownCategory(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	_, err := f.svc.UpdateExpense(f.group.ID, expense.ID, models.UpdateExpenseRequest{
		Category: "gambling",
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	unchanged, getErr := f.svc.GetExpense(f.group.ID, expense.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "food", unchanged.Category)
}

func TestCreateExpenseInvalidCustomSplit(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.svc.CreateExpense(f.group.ID, f.alice.ID, models.CreateExpenseRequest{
		Category:    "transportation",
		Amount:      100,
		Description: "Taxi",
		SplitMethod: models.SplitCustom,
		Date:        "2026-08-15",
		Participants: []models.ParticipantInput{
			{UserID: f.alice.ID.String(), ShareAmount: 40},
			{UserID: f.bob.ID.String(), ShareAmount: 30},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInvalidSplit)
}

func TestUpdateExpenseResplitsOnAmountChange(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	updated, err := f.svc.UpdateExpense(f.group.ID, expense.ID, models.UpdateExpenseRequest{
		Amount: 120,
	})
	require.NoError(t, err)

	require.Len(t, updated.Participants, 3)
	var sum int64
	for _, p := range updated.Participants {
		assert.Equal(t, int64(40), p.ShareAmount)
		sum += p.ShareAmount
	}
	assert.Equal(t, int64(120), sum)

	// Payer row stays settled across a resplit.
	assert.True(t, shareByUser(updated, f.alice.ID).IsSettled)
}

func TestUpdateExpenseNewParticipantList(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	updated, err := f.svc.UpdateExpense(f.group.ID, expense.ID, models.UpdateExpenseRequest{
		Participants: []models.ParticipantInput{
			{UserID: f.alice.ID.String()},
			{UserID: f.bob.ID.String()},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Participants, 2)
	assert.Equal(t, int64(45), shareByUser(updated, f.alice.ID).ShareAmount)
	assert.Equal(t, int64(45), shareByUser(updated, f.bob.ID).ShareAmount)
	assert.Nil(t, shareByUser(updated, f.carol.ID))

	// Old rows are gone, not orphaned.
	var count int64
	f.db.Model(&models.ExpenseParticipant{}).Where("expense_id = ?", expense.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSetParticipantSettledToggle(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)
	bobRow := shareByUser(expense, f.bob.ID)

	updated, err := f.svc.SetParticipantSettled(f.group.ID, expense.ID, bobRow.ID, true)
	require.NoError(t, err)
	settled := shareByUser(updated, f.bob.ID)
	assert.True(t, settled.IsSettled)
	require.NotNil(t, settled.SettledAt)

	updated, err = f.svc.SetParticipantSettled(f.group.ID, expense.ID, bobRow.ID, false)
	require.NoError(t, err)
	unsettled := shareByUser(updated, f.bob.ID)
	assert.False(t, unsettled.IsSettled)
	assert.Nil(t, unsettled.SettledAt)
}

func TestSetParticipantSettledUnknownRow(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	_, err := f.svc.SetParticipantSettled(f.group.ID, expense.ID, uuid.New(), true)
	require.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestRecordSettlementValidation(t *testing.T) {
	f := newTestFixture(t)
	outsider := f.createUser(t, "Dave")

	_, err := f.svc.RecordSettlement(f.group.ID, f.bob.ID, models.CreateSettlementRequest{
		ToUserID: f.bob.ID.String(),
		Amount:   30,
	})
	require.ErrorIs(t, err, ErrSelfSettlement)

	_, err = f.svc.RecordSettlement(f.group.ID, f.bob.ID, models.CreateSettlementRequest{
		ToUserID: outsider.ID.String(),
		Amount:   30,
	})
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestRecordSettlement(t *testing.T) {
	f := newTestFixture(t)

	settlement, err := f.svc.RecordSettlement(f.group.ID, f.bob.ID, models.CreateSettlementRequest{
		ToUserID: f.alice.ID.String(),
		Amount:   30,
		Note:     "Dinner repayment",
	})
	require.NoError(t, err)

	assert.Equal(t, f.bob.ID, settlement.FromUserID)
	assert.Equal(t, f.alice.ID, settlement.ToUserID)
	assert.Equal(t, int64(30), settlement.Amount)
	assert.Equal(t, "Bob", settlement.FromUser.Name)
	assert.Equal(t, "Alice", settlement.ToUser.Name)
}

func TestDeleteExpenseRemovesParticipants(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	require.NoError(t, f.svc.DeleteExpense(f.group.ID, expense.ID))

	_, err := f.svc.GetExpense(f.group.ID, expense.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)

	var count int64
	f.db.Model(&models.ExpenseParticipant{}).Where("expense_id = ?", expense.ID).Count(&count)
	assert.Zero(t, count)
}

func balanceFor(balances []models.UserBalance, userID uuid.UUID) *models.UserBalance {
	for i := range balances {
		if balances[i].UserID == userID {
			return &balances[i]
		}
	}
	return nil
}

func TestGroupBalances(t *testing.T) {
	f := newTestFixture(t)
	f.equalExpense(t, 90)

	balances, err := f.svc.GroupBalances(f.group.ID)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	alice := balanceFor(balances, f.alice.ID)
	assert.Equal(t, int64(60), alice.NetBalance)
	assert.Len(t, alice.IsOwed, 2)
	assert.Empty(t, alice.Owes)

	bob := balanceFor(balances, f.bob.ID)
	assert.Equal(t, int64(-30), bob.NetBalance)
	require.Len(t, bob.Owes, 1)
	assert.Equal(t, f.alice.ID, bob.Owes[0].UserID)
	assert.Equal(t, "Alice", bob.Owes[0].UserName)
	assert.Equal(t, int64(30), bob.Owes[0].Amount)
}

func TestGroupBalancesAfterSettlement(t *testing.T) {
	f := newTestFixture(t)
	f.equalExpense(t, 90)

	_, err := f.svc.RecordSettlement(f.group.ID, f.bob.ID, models.CreateSettlementRequest{
		ToUserID: f.alice.ID.String(),
		Amount:   30,
	})
	require.NoError(t, err)

	balances, err := f.svc.GroupBalances(f.group.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(30), balanceFor(balances, f.alice.ID).NetBalance)
	assert.Equal(t, int64(0), balanceFor(balances, f.bob.ID).NetBalance)
	assert.Empty(t, balanceFor(balances, f.bob.ID).Owes)
	assert.Equal(t, int64(-30), balanceFor(balances, f.carol.ID).NetBalance)
}

func TestGroupBalancesSkipSettledShares(t *testing.T) {
	f := newTestFixture(t)
	expense := f.equalExpense(t, 90)

	bobRow := shareByUser(expense, f.bob.ID)
	_, err := f.svc.SetParticipantSettled(f.group.ID, expense.ID, bobRow.ID, true)
	require.NoError(t, err)

	balances, err := f.svc.GroupBalances(f.group.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), balanceFor(balances, f.bob.ID).NetBalance)
	assert.Equal(t, int64(30), balanceFor(balances, f.alice.ID).NetBalance)
}

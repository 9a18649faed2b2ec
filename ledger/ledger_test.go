package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	bob   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	carol = uuid.MustParse("cccccccc-0000-0000-0000-000000000003")
)

func position(t *testing.T, positions []NetPosition, user uuid.UUID) NetPosition {
	t.Helper()
	for _, p := range positions {
		if p.UserID == user {
			return p
		}
	}
	t.Fatalf("no position for user %s", user)
	return NetPosition{}
}

func TestBuildDebtMatrixEmptyGroups(t *testing.T) {
	assert.Empty(t, BuildDebtMatrix(nil, nil, nil))

	// A single member has no counterpart to owe.
	matrix := BuildDebtMatrix([]uuid.UUID{alice}, nil, nil)
	assert.Empty(t, matrix[alice])
	assert.Empty(t, NetBalances([]uuid.UUID{alice}, matrix)[0].Owes)
}

func TestBuildDebtMatrix(t *testing.T) {
	members := []uuid.UUID{alice, bob, carol}

	expenses := []ExpenseRecord{
		{
			PaidBy: alice,
			Shares: []Share{
				{UserID: alice, Amount: 30, IsSettled: true}, // payer's own row
				{UserID: bob, Amount: 30},
				{UserID: carol, Amount: 30},
			},
		},
		{
			PaidBy: bob,
			Shares: []Share{
				{UserID: alice, Amount: 10},
				{UserID: bob, Amount: 10, IsSettled: true},
				{UserID: carol, Amount: 10, IsSettled: true}, // cleared share is skipped
			},
		},
	}

	matrix := BuildDebtMatrix(members, expenses, nil)

	assert.Equal(t, int64(30), matrix[bob][alice])
	assert.Equal(t, int64(30), matrix[carol][alice])
	assert.Equal(t, int64(10), matrix[alice][bob])
	assert.Equal(t, int64(0), matrix[carol][bob])
	assert.Equal(t, int64(0), matrix[alice][carol])
}

func TestBuildDebtMatrixSettlements(t *testing.T) {
	members := []uuid.UUID{alice, bob}

	expenses := []ExpenseRecord{
		{PaidBy: alice, Shares: []Share{{UserID: bob, Amount: 50}}},
	}
	transfers := []Transfer{{From: bob, To: alice, Amount: 20}}

	matrix := BuildDebtMatrix(members, expenses, transfers)
	assert.Equal(t, int64(30), matrix[bob][alice])

	// Overshooting settlements drive the cell negative; netting flips it.
	matrix = BuildDebtMatrix(members, expenses, []Transfer{{From: bob, To: alice, Amount: 80}})
	assert.Equal(t, int64(-30), matrix[bob][alice])

	positions := NetBalances(members, matrix)
	assert.Equal(t, []Entry{{UserID: bob, Amount: 30}}, position(t, positions, alice).Owes)
	assert.Equal(t, int64(-30), position(t, positions, alice).Net)
}

func TestBuildDebtMatrixDepartedMembers(t *testing.T) {
	// Historic rows referencing users no longer in the group are dropped
	// from the balance view.
	members := []uuid.UUID{alice, bob}

	expenses := []ExpenseRecord{
		{PaidBy: carol, Shares: []Share{{UserID: alice, Amount: 40}}},
		{PaidBy: alice, Shares: []Share{{UserID: carol, Amount: 25}, {UserID: bob, Amount: 25}}},
	}
	transfers := []Transfer{{From: carol, To: alice, Amount: 10}}

	matrix := BuildDebtMatrix(members, expenses, transfers)
	assert.Equal(t, int64(25), matrix[bob][alice])
	assert.NotContains(t, matrix, carol)
	assert.NotContains(t, matrix[alice], carol)
}

func TestNetBalancesSymmetry(t *testing.T) {
	members := []uuid.UUID{alice, bob}
	matrix := DebtMatrix{
		alice: {bob: 10},
		bob:   {alice: 3},
	}

	positions := NetBalances(members, matrix)
	a := position(t, positions, alice)
	b := position(t, positions, bob)

	// Only the net direction survives: never both owes and isOwed for a pair.
	assert.Equal(t, []Entry{{UserID: bob, Amount: 7}}, a.Owes)
	assert.Empty(t, a.IsOwed)
	assert.Equal(t, []Entry{{UserID: alice, Amount: 7}}, b.IsOwed)
	assert.Empty(t, b.Owes)
	assert.Equal(t, int64(-7), a.Net)
	assert.Equal(t, int64(7), b.Net)
}

func TestNetBalancesEvenPairProducesNoEntries(t *testing.T) {
	members := []uuid.UUID{alice, bob}
	matrix := DebtMatrix{
		alice: {bob: 42},
		bob:   {alice: 42},
	}

	for _, p := range NetBalances(members, matrix) {
		assert.Empty(t, p.Owes)
		assert.Empty(t, p.IsOwed)
		assert.Equal(t, int64(0), p.Net)
	}
}

func TestNetBalancesIdempotent(t *testing.T) {
	members := []uuid.UUID{alice, bob, carol}
	expenses := []ExpenseRecord{
		{PaidBy: alice, Shares: []Share{{UserID: bob, Amount: 17}, {UserID: carol, Amount: 23}}},
		{PaidBy: carol, Shares: []Share{{UserID: alice, Amount: 9}, {UserID: bob, Amount: 9}}},
	}
	transfers := []Transfer{{From: bob, To: alice, Amount: 5}}

	first := NetBalances(members, BuildDebtMatrix(members, expenses, transfers))
	second := NetBalances(members, BuildDebtMatrix(members, expenses, transfers))
	assert.Equal(t, first, second)
}

func TestSettlementEffect(t *testing.T) {
	members := []uuid.UUID{alice, bob}
	expenses := []ExpenseRecord{
		{PaidBy: alice, Shares: []Share{{UserID: bob, Amount: 70}}},
	}

	before := NetBalances(members, BuildDebtMatrix(members, expenses, nil))
	after := NetBalances(members, BuildDebtMatrix(members, expenses, []Transfer{
		{From: bob, To: alice, Amount: 25},
	}))

	// Recording a settlement of X decreases the payer's debt by exactly X.
	assert.Equal(t, position(t, before, bob).Net+25, position(t, after, bob).Net)
	assert.Equal(t, position(t, before, alice).Net-25, position(t, after, alice).Net)
}

// Full scenario: A pays 90 split equally among A, B, C; then B settles up.
func TestGroupLedgerEndToEnd(t *testing.T) {
	members := []uuid.UUID{alice, bob, carol}

	shares, err := ComputeShares("equal", 90, make([]ShareSpec, 3))
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 30, 30}, shares)

	expense := ExpenseRecord{
		PaidBy: alice,
		Shares: []Share{
			{UserID: alice, Amount: shares[0], IsSettled: true},
			{UserID: bob, Amount: shares[1]},
			{UserID: carol, Amount: shares[2]},
		},
	}

	positions := NetBalances(members, BuildDebtMatrix(members, []ExpenseRecord{expense}, nil))
	a := position(t, positions, alice)
	assert.Equal(t, int64(60), a.Net)
	assert.Equal(t, []Entry{{UserID: bob, Amount: 30}, {UserID: carol, Amount: 30}}, a.IsOwed)
	assert.Equal(t, []Entry{{UserID: alice, Amount: 30}}, position(t, positions, bob).Owes)

	// B pays A back 30.
	transfers := []Transfer{{From: bob, To: alice, Amount: 30}}
	positions = NetBalances(members, BuildDebtMatrix(members, []ExpenseRecord{expense}, transfers))

	a = position(t, positions, alice)
	b := position(t, positions, bob)
	assert.Equal(t, int64(30), a.Net)
	assert.Equal(t, []Entry{{UserID: carol, Amount: 30}}, a.IsOwed)
	assert.Empty(t, b.Owes)
	assert.Equal(t, int64(0), b.Net)
}

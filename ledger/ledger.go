package ledger

import "github.com/google/uuid"

// Share is one participant's stake in an expense, as far as balance
// computation cares: who owes it and whether it is already settled.
type Share struct {
	UserID    uuid.UUID
	Amount    int64
	IsSettled bool
}

// ExpenseRecord is an expense reduced to its balance-relevant fields.
type ExpenseRecord struct {
	PaidBy uuid.UUID
	Shares []Share
}

// Transfer is a recorded direct payment from one member to another.
type Transfer struct {
	From   uuid.UUID
	To     uuid.UUID
	Amount int64
}

// DebtMatrix maps debtor -> creditor -> gross amount owed. Cells can go
// negative when settlements overshoot; netting resolves the direction.
type DebtMatrix map[uuid.UUID]map[uuid.UUID]int64

// Entry is one edge of the netted graph from a single user's point of view.
type Entry struct {
	UserID uuid.UUID
	Amount int64
}

// NetPosition is a member's collapsed view of the debt matrix. Net is
// positive for net creditors and negative for net debtors.
type NetPosition struct {
	UserID uuid.UUID
	Owes   []Entry
	IsOwed []Entry
	Net    int64
}

// BuildDebtMatrix materializes the gross pairwise debts of a group from
// its full expense and settlement history.
//
// The key space is exactly the current membership: shares or transfers
// referencing users who have since left the group are dropped. A share is
// counted only while unsettled and only when its owner is not the payer.
// Per-share settled flags and transfer rows are two independent clearing
// mechanisms; both are applied as recorded, without reconciling overlaps.
func BuildDebtMatrix(members []uuid.UUID, expenses []ExpenseRecord, transfers []Transfer) DebtMatrix {
	matrix := make(DebtMatrix, len(members))
	for _, m := range members {
		row := make(map[uuid.UUID]int64, len(members)-1)
		for _, other := range members {
			if m != other {
				row[other] = 0
			}
		}
		matrix[m] = row
	}

	for _, exp := range expenses {
		for _, share := range exp.Shares {
			if share.UserID == exp.PaidBy || share.IsSettled {
				continue
			}
			if row, ok := matrix[share.UserID]; ok {
				if _, ok := row[exp.PaidBy]; ok {
					row[exp.PaidBy] += share.Amount
				}
			}
		}
	}

	for _, t := range transfers {
		if row, ok := matrix[t.From]; ok {
			if _, ok := row[t.To]; ok {
				row[t.To] -= t.Amount
			}
		}
	}

	return matrix
}

// NetBalances collapses a debt matrix into one NetPosition per member.
// For each pair only the net direction survives: a pair either has one
// owes/isOwed edge or none, never both. Counterparts are listed in member
// enumeration order.
func NetBalances(members []uuid.UUID, matrix DebtMatrix) []NetPosition {
	positions := make([]NetPosition, 0, len(members))

	for _, m := range members {
		pos := NetPosition{UserID: m}

		for _, other := range members {
			if m == other {
				continue
			}

			owedToOther := matrix[m][other]
			owedFromOther := matrix[other][m]
			net := owedToOther - owedFromOther

			switch {
			case net > 0:
				pos.Owes = append(pos.Owes, Entry{UserID: other, Amount: net})
				pos.Net -= net
			case net < 0:
				pos.IsOwed = append(pos.IsOwed, Entry{UserID: other, Amount: -net})
				pos.Net += -net
			}
		}

		positions = append(positions, pos)
	}

	return positions
}

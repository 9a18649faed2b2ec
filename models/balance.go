package models

import "github.com/google/uuid"

// BalanceEntry is one edge of the netted debt graph, seen from a user's side.
type BalanceEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Amount   int64     `json:"amount"`
}

// UserBalance is the per-user view computed fresh on every balance query;
// it is never persisted. Positive net balance means net creditor.
type UserBalance struct {
	UserID     uuid.UUID      `json:"user_id"`
	User       UserSummary    `json:"user"`
	Owes       []BalanceEntry `json:"owes"`
	IsOwed     []BalanceEntry `json:"is_owed"`
	NetBalance int64          `json:"net_balance"`
}

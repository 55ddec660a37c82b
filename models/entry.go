package models

import "time"

// EntryKind is the closed two-value set of ledger entry kinds.
type EntryKind string

const (
	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"
)

// Valid reports whether k is one of the two supported entry kinds.
func (k EntryKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Entry represents a single income or expense record owned by exactly one user.
//
// Every read and mutation of an Entry is scoped by UserID at the persistence
// layer, so an entry is never visible to or modifiable by anyone but its owner.
type Entry struct {
	// ID is the server-assigned unique identifier of the entry.
	ID int64 `json:"id"`

	// UserID is the owning user. Not exposed: the caller's identity is
	// always implied by the session token.
	UserID int64 `json:"-"`

	// Kind is either "income" or "expense".
	Kind EntryKind `json:"kind"`

	// Amount is the positive monetary value of the entry.
	Amount float64 `json:"amount"`

	// Category is a free-text grouping label (e.g. "Food", "Salary").
	Category string `json:"category"`

	// Date is the occurrence date of the transaction.
	Date time.Time `json:"date"`

	// Note is an optional free-text comment.
	Note string `json:"note"`

	// CreatedAt is the timestamp when the entry was persisted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last mutation of the entry.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Entry model.
func (e Entry) TableName() string {
	return "entries"
}

// EntryFilter carries the optional predicates accepted by the entry listing
// operation. The zero value selects all entries of the owner.
type EntryFilter struct {
	// Kind narrows the result to one entry kind when non-empty.
	Kind EntryKind

	// Category narrows the result to an exact category match when non-empty.
	Category string

	// From, when non-nil, keeps entries with Date >= From.
	From *time.Time

	// To, when non-nil, keeps entries with Date <= To.
	To *time.Time

	// Limit caps the result set size. Zero means the server default.
	Limit int

	// Offset skips the given number of newest entries for pagination.
	Offset int
}

// Summary is the aggregate view over all entries of one user.
type Summary struct {
	// TotalIncome is the sum of amounts of all income entries.
	TotalIncome float64 `json:"total_income"`

	// TotalExpenses is the sum of amounts of all expense entries.
	TotalExpenses float64 `json:"total_expenses"`

	// Balance equals TotalIncome minus TotalExpenses.
	Balance float64 `json:"balance"`

	// Count is the total number of entries, both kinds.
	Count int64 `json:"count"`
}

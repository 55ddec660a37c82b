package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/mlevkov/go-fin-keeper/models"
)

const (
	createUser = `INSERT INTO users (email, name, password_hash, otp_code, otp_expires_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING user_id, email, name, password_hash, verified, otp_code, otp_expires_at, reset_code, reset_expires_at, created_at, updated_at;`

	findUserByEmail = `SELECT user_id, email, name, password_hash, verified, otp_code, otp_expires_at, reset_code, reset_expires_at, created_at, updated_at
    FROM users
    WHERE email = $1;`

	findUserByID = `SELECT user_id, email, name, password_hash, verified, otp_code, otp_expires_at, reset_code, reset_expires_at, created_at, updated_at
    FROM users
    WHERE user_id = $1;`

	saveVerifyOTP = `UPDATE users
    SET otp_code = $2, otp_expires_at = $3, updated_at = now()
    WHERE user_id = $1;`

	saveResetOTP = `UPDATE users
    SET reset_code = $2, reset_expires_at = $3, updated_at = now()
    WHERE user_id = $1;`

	markVerified = `UPDATE users
    SET verified = TRUE, otp_code = '', otp_expires_at = NULL, updated_at = now()
    WHERE user_id = $1;`

	updatePassword = `UPDATE users
    SET password_hash = $2, reset_code = '', reset_expires_at = NULL, updated_at = now()
    WHERE user_id = $1;`

	createEntry = `INSERT INTO entries (user_id, kind, amount, category, entry_date, note)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING entry_id, user_id, kind, amount, category, entry_date, note, created_at, updated_at;`

	getEntry = `SELECT entry_id, user_id, kind, amount, category, entry_date, note, created_at, updated_at
    FROM entries
    WHERE user_id = $1 AND entry_id = $2;`

	updateEntry = `UPDATE entries
    SET kind = $3, amount = $4, category = $5, entry_date = $6, note = $7, updated_at = now()
    WHERE user_id = $1 AND entry_id = $2
    RETURNING entry_id, user_id, kind, amount, category, entry_date, note, created_at, updated_at;`

	deleteEntry = `DELETE FROM entries
    WHERE user_id = $1 AND entry_id = $2
    RETURNING entry_id, user_id, kind, amount, category, entry_date, note, created_at, updated_at;`

	getSummary = `SELECT
      COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
      COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0),
      COUNT(*)
    FROM entries
    WHERE user_id = $1;`
)

// defaultListLimit caps the entry listing result set when the caller does not
// ask for a specific page size.
const defaultListLimit = 100

// buildListEntriesQuery assembles the SELECT for the entry listing operation.
//
// The owner predicate is always present; kind, category, and date-range
// predicates are appended only when the corresponding filter fields are set.
// Results are ordered by occurrence date descending (newest first, ties
// broken by entry id) and paginated with LIMIT/OFFSET.
func buildListEntriesQuery(_ context.Context, userID int64, filter models.EntryFilter) (string, []any, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	builder := sq.Select("entry_id", "user_id", "kind", "amount", "category", "entry_date", "note", "created_at", "updated_at").
		From("entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("entry_date DESC", "entry_id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	if filter.Kind != "" {
		builder = builder.Where(sq.Eq{"kind": string(filter.Kind)})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"entry_date": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"entry_date": *filter.To})
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, ErrBuildingSQLQuery
	}

	return query, args, nil
}

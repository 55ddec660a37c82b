package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/models"
)

// entryRepository is the PostgreSQL-backed implementation of [EntryRepository].
// Every query carries the owner's user id in its WHERE clause, so rows owned
// by other users are invisible to all operations.
type entryRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewEntryRepository constructs an [EntryRepository] backed by the provided
// database connection and logger.
func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	logger.Debug().Msg("creating entry repository")
	return &entryRepository{
		db:     db,
		logger: logger,
	}
}

// CreateEntry persists a new ledger entry and returns it with server-assigned
// fields (ID, CreatedAt, UpdatedAt) populated from the RETURNING clause.
func (r *entryRepository) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createEntry,
		entry.UserID, entry.Kind, entry.Amount, entry.Category, entry.Date, entry.Note)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.CreateEntry").Msg("error: row is nil")
		r.logClassification(ctx, "*entryRepository.CreateEntry", err)
		return models.Entry{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	// scan saved entry from db
	if err := scanEntryRow(row, &entry); err != nil {
		log.Err(err).Str("func", "*entryRepository.CreateEntry").Msg("error: scanning error")
		return models.Entry{}, err
	}

	return entry, nil
}

// GetEntry fetches one entry by id, scoped to the owner. A missing entry and
// an entry owned by someone else both yield [ErrEntryNotFound].
func (r *entryRepository) GetEntry(ctx context.Context, userID, entryID int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	var entry models.Entry
	row := r.db.QueryRowContext(ctx, getEntry, userID, entryID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.GetEntry").Msg("error: row is nil")
		r.logClassification(ctx, "*entryRepository.GetEntry", err)
		return models.Entry{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanEntryRow(row, &entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, ErrEntryNotFound
		}
		log.Err(err).Str("func", "*entryRepository.GetEntry").Msg("error: scanning error")
		return models.Entry{}, err
	}

	return entry, nil
}

// ListEntries returns the owner's entries matching the filter, newest first.
// The SELECT is assembled dynamically because every filter field is optional.
func (r *entryRepository) ListEntries(ctx context.Context, userID int64, filter models.EntryFilter) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEntriesQuery(ctx, userID, filter)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error: building query")
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error: executing query")
		r.logClassification(ctx, "*entryRepository.ListEntries", err)
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Kind, &entry.Amount, &entry.Category,
			&entry.Date, &entry.Note, &entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error: iterating rows")
		return nil, err
	}

	return entries, nil
}

// UpdateEntry rewrites all mutable columns of the entry identified by
// (UserID, ID) and returns the updated row. Returns [ErrEntryNotFound] when
// the entry does not exist or is owned by a different user.
func (r *entryRepository) UpdateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, updateEntry,
		entry.UserID, entry.ID, entry.Kind, entry.Amount, entry.Category, entry.Date, entry.Note)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.UpdateEntry").Msg("error: row is nil")
		r.logClassification(ctx, "*entryRepository.UpdateEntry", err)
		return models.Entry{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var updated models.Entry
	if err := scanEntryRow(row, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, ErrEntryNotFound
		}
		log.Err(err).Str("func", "*entryRepository.UpdateEntry").Msg("error: scanning error")
		return models.Entry{}, err
	}

	return updated, nil
}

// DeleteEntry removes the entry identified by (userID, entryID) and returns
// the last snapshot of the deleted row. Returns [ErrEntryNotFound] when the
// entry does not exist or is owned by a different user.
func (r *entryRepository) DeleteEntry(ctx context.Context, userID, entryID int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, deleteEntry, userID, entryID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.DeleteEntry").Msg("error: row is nil")
		r.logClassification(ctx, "*entryRepository.DeleteEntry", err)
		return models.Entry{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var deleted models.Entry
	if err := scanEntryRow(row, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, ErrEntryNotFound
		}
		log.Err(err).Str("func", "*entryRepository.DeleteEntry").Msg("error: scanning error")
		return models.Entry{}, err
	}

	return deleted, nil
}

// GetSummary aggregates all entries of the owner into income/expense totals.
// A user with no entries gets a zero-valued summary, not an error.
func (r *entryRepository) GetSummary(ctx context.Context, userID int64) (models.Summary, error) {
	log := logger.FromContext(ctx)

	var summary models.Summary
	row := r.db.QueryRowContext(ctx, getSummary, userID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.GetSummary").Msg("error: row is nil")
		r.logClassification(ctx, "*entryRepository.GetSummary", err)
		return models.Summary{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&summary.TotalIncome, &summary.TotalExpenses, &summary.Count); err != nil {
		log.Err(err).Str("func", "*entryRepository.GetSummary").Msg("error: scanning error")
		return models.Summary{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpenses

	return summary, nil
}

// logClassification records whether an unexpected driver error is transient
// (worth retrying upstream) or permanent, using the connection's classifier.
func (r *entryRepository) logClassification(ctx context.Context, funcName string, err error) {
	log := logger.FromContext(ctx)
	retryable := r.db.errorClassificator.Classify(err) == Retryable
	log.Warn().Str("func", funcName).Bool("retryable", retryable).Msg("unexpected DB error classified")
}

// scanEntryRow reads a full entries-table row into dst.
func scanEntryRow(row *sql.Row, dst *models.Entry) error {
	return row.Scan(
		&dst.ID, &dst.UserID, &dst.Kind, &dst.Amount, &dst.Category,
		&dst.Date, &dst.Note, &dst.CreatedAt, &dst.UpdatedAt,
	)
}

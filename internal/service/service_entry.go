package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/store"
	"github.com/mlevkov/go-fin-keeper/models"
)

// entryDateLayout is the wire format of entry occurrence dates.
const entryDateLayout = "2006-01-02"

// maxListLimit caps the page size a caller may request when listing entries.
const maxListLimit = 500

// entryService is the concrete implementation of EntryService. It validates
// entry payloads and delegates persistence to an owner-scoped EntryRepository,
// so the ownership guarantee lives entirely in the storage layer.
type entryService struct {
	entryRepository store.EntryRepository
	logger          *logger.Logger
}

// NewEntryService constructs an EntryService wired to the given repository.
func NewEntryService(entryRepository store.EntryRepository, logger *logger.Logger) EntryService {
	return &entryService{
		entryRepository: entryRepository,
		logger:          logger,
	}
}

// List returns the owner's entries matching the filter, newest first. The
// requested page size is clamped to a server-side maximum.
func (s *entryService) List(ctx context.Context, userID int64, filter models.EntryFilter) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, ErrValidationInvalidKind
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	entries, err := s.entryRepository.ListEntries(ctx, userID, filter)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("listing entries failed")
		return nil, fmt.Errorf("listing entries failed: %w", err)
	}

	return entries, nil
}

// Create validates the payload and persists a new entry owned by userID.
// Kind, amount, category, and date are all required.
func (s *entryService) Create(ctx context.Context, userID int64, req models.EntryRequest) (models.Entry, error) {
	log := logger.FromContext(ctx)

	entry := models.Entry{UserID: userID}
	if err := applyEntryRequest(&entry, req); err != nil {
		return models.Entry{}, err
	}
	if missing := missingEntryFields(entry); len(missing) > 0 {
		return models.Entry{}, fmt.Errorf("%w: %s", ErrValidationMissingFields, strings.Join(missing, ", "))
	}

	created, err := s.entryRepository.CreateEntry(ctx, entry)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("entry creation ended with error")
		return models.Entry{}, fmt.Errorf("entry creation ended with error: %w", err)
	}

	return created, nil
}

// Update applies the non-absent fields of req to the entry identified by
// (userID, entryID) and persists the result. A missing entry and an entry
// owned by someone else are both reported as store.ErrEntryNotFound.
func (s *entryService) Update(ctx context.Context, userID, entryID int64, req models.EntryRequest) (models.Entry, error) {
	log := logger.FromContext(ctx)

	entry, err := s.entryRepository.GetEntry(ctx, userID, entryID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Int64("entry_id", entryID).Msg("entry lookup failed")
		return models.Entry{}, fmt.Errorf("entry lookup failed: %w", err)
	}

	if err := applyEntryRequest(&entry, req); err != nil {
		return models.Entry{}, err
	}

	updated, err := s.entryRepository.UpdateEntry(ctx, entry)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Int64("entry_id", entryID).Msg("entry update ended with error")
		return models.Entry{}, fmt.Errorf("entry update ended with error: %w", err)
	}

	return updated, nil
}

// Delete removes the entry identified by (userID, entryID) and returns its
// last snapshot.
func (s *entryService) Delete(ctx context.Context, userID, entryID int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	deleted, err := s.entryRepository.DeleteEntry(ctx, userID, entryID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Int64("entry_id", entryID).Msg("entry deletion ended with error")
		return models.Entry{}, fmt.Errorf("entry deletion ended with error: %w", err)
	}

	return deleted, nil
}

// Summary aggregates all of the owner's entries into income and expense
// totals with a derived balance.
func (s *entryService) Summary(ctx context.Context, userID int64) (models.Summary, error) {
	log := logger.FromContext(ctx)

	summary, err := s.entryRepository.GetSummary(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("summary aggregation failed")
		return models.Summary{}, fmt.Errorf("summary aggregation failed: %w", err)
	}

	return summary, nil
}

// applyEntryRequest copies the non-absent fields of req onto entry,
// validating each as it goes. Absent fields keep the entry's current value,
// which makes the same helper serve both create and partial update.
func applyEntryRequest(entry *models.Entry, req models.EntryRequest) error {
	if req.Kind != nil {
		kind := models.EntryKind(*req.Kind)
		if !kind.Valid() {
			return ErrValidationInvalidKind
		}
		entry.Kind = kind
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return ErrValidationInvalidAmount
		}
		entry.Amount = *req.Amount
	}
	if req.Category != nil {
		if *req.Category == "" {
			return fmt.Errorf("%w: category", ErrValidationMissingFields)
		}
		entry.Category = *req.Category
	}
	if req.Date != nil {
		date, err := time.Parse(entryDateLayout, *req.Date)
		if err != nil {
			return fmt.Errorf("%w: date must use YYYY-MM-DD", ErrInvalidDataProvided)
		}
		entry.Date = date
	}
	if req.Note != nil {
		entry.Note = *req.Note
	}

	return nil
}

// missingEntryFields names the required create fields the request left
// unset, in a stable order for the client-facing message.
func missingEntryFields(entry models.Entry) []string {
	var missing []string
	if entry.Kind == "" {
		missing = append(missing, "kind")
	}
	if entry.Amount == 0 {
		missing = append(missing, "amount")
	}
	if entry.Category == "" {
		missing = append(missing, "category")
	}
	if entry.Date.IsZero() {
		missing = append(missing, "date")
	}
	return missing
}

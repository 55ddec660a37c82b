package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
	"github.com/mlevkov/go-fin-keeper/models"
)

// queryDateLayout is the accepted format of the from/to query parameters.
const queryDateLayout = "2006-01-02"

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	filter, err := parseEntryFilter(r)
	if err != nil {
		log.Err(err).Msg("invalid listing filter")
		utils.WriteFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.services.EntryService.List(ctx, userID, filter)
	if err != nil {
		log.Err(err).Msg("listing entries failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "ok", models.ListResponse{
		Entries: entries,
		Length:  len(entries),
	})
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	var req models.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	created, err := h.services.EntryService.Create(ctx, userID, req)
	if err != nil {
		log.Err(err).Msg("entry creation failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	log.Info().Int64("entry_id", created.ID).Msg("entry created")

	utils.WriteSuccess(w, http.StatusCreated, "entry created", created)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	entryID, err := entryIDFromRequest(r)
	if err != nil {
		log.Err(err).Msg("invalid entry id")
		utils.WriteFailure(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req models.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	updated, err := h.services.EntryService.Update(ctx, userID, entryID, req)
	if err != nil {
		log.Err(err).Int64("entry_id", entryID).Msg("entry update failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "entry updated", updated)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	entryID, err := entryIDFromRequest(r)
	if err != nil {
		log.Err(err).Msg("invalid entry id")
		utils.WriteFailure(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	deleted, err := h.services.EntryService.Delete(ctx, userID, entryID)
	if err != nil {
		log.Err(err).Int64("entry_id", entryID).Msg("entry deletion failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "entry deleted", deleted)
}

func (h *Handler) entriesSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	summary, err := h.services.EntryService.Summary(ctx, userID)
	if err != nil {
		log.Err(err).Msg("summary aggregation failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "ok", summary)
}

// entryIDFromRequest parses the {id} URL parameter.
func entryIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseEntryFilter reads the optional kind, category, from, to, limit, and
// offset query parameters into an EntryFilter. Range and kind validity are
// checked downstream; this only handles syntax.
func parseEntryFilter(r *http.Request) (models.EntryFilter, error) {
	var filter models.EntryFilter
	query := r.URL.Query()

	filter.Kind = models.EntryKind(query.Get("kind"))
	filter.Category = query.Get("category")

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return models.EntryFilter{}, err
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return models.EntryFilter{}, err
		}
		filter.To = &to
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return models.EntryFilter{}, err
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return models.EntryFilter{}, err
		}
		filter.Offset = offset
	}

	return filter, nil
}

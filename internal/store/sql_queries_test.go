package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mlevkov/go-fin-keeper/models"
)

func TestBuildListEntriesQuery_NoFilter(t *testing.T) {
	query, args, err := buildListEntriesQuery(context.Background(), 1, models.EntryFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "user_id = $1") {
		t.Errorf("owner predicate missing from query: %s", query)
	}
	if !strings.Contains(query, "ORDER BY entry_date DESC, entry_id DESC") {
		t.Errorf("expected newest-first ordering, got: %s", query)
	}
	if !strings.Contains(query, "LIMIT 100") {
		t.Errorf("expected default limit, got: %s", query)
	}
	if strings.Contains(query, "OFFSET") {
		t.Errorf("no offset requested, got: %s", query)
	}
	if len(args) != 1 || args[0] != int64(1) {
		t.Errorf("expected single owner arg, got %v", args)
	}
}

func TestBuildListEntriesQuery_AllFilters(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	filter := models.EntryFilter{
		Kind:     models.KindExpense,
		Category: "Food",
		From:     &from,
		To:       &to,
		Limit:    25,
		Offset:   50,
	}

	query, args, err := buildListEntriesQuery(context.Background(), 7, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, fragment := range []string{"kind = ", "category = ", "entry_date >= ", "entry_date <= ", "LIMIT 25", "OFFSET 50"} {
		if !strings.Contains(query, fragment) {
			t.Errorf("expected %q in query: %s", fragment, query)
		}
	}
	// owner + kind + category + from + to
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[0] != int64(7) {
		t.Errorf("expected owner id first, got %v", args[0])
	}
}

func TestBuildListEntriesQuery_DollarPlaceholders(t *testing.T) {
	filter := models.EntryFilter{Kind: models.KindIncome}

	query, _, err := buildListEntriesQuery(context.Background(), 1, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(query, "?") {
		t.Errorf("expected dollar placeholders, got: %s", query)
	}
	if !strings.Contains(query, "$2") {
		t.Errorf("expected second placeholder for kind, got: %s", query)
	}
}

func TestBuildListEntriesQuery_ZeroLimitUsesDefault(t *testing.T) {
	query, _, err := buildListEntriesQuery(context.Background(), 1, models.EntryFilter{Limit: -5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "LIMIT 100") {
		t.Errorf("expected default limit for non-positive input, got: %s", query)
	}
}

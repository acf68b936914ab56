package itembank

import (
	"context"
	"fmt"
	"log/slog"
)

// Source provides the raw tabular rows of the item bank. The first row
// is a header and is skipped during load.
type Source interface {
	FetchAllRows(ctx context.Context) ([][]string, error)
}

// Bank is the parsed, read-only item bank. Safe for concurrent readers
// once loaded.
type Bank struct {
	items []Item
}

// Load fetches all rows from the source and parses them into a Bank.
// Malformed rows are skipped with a warning; they never fail the load.
func Load(ctx context.Context, src Source) (*Bank, error) {
	rows, err := src.FetchAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch item bank rows: %w", err)
	}
	if len(rows) == 0 {
		return &Bank{}, nil
	}

	var items []Item
	for i, row := range rows[1:] { // skip header
		item, err := parseRow(row)
		if err != nil {
			slog.Warn("skipping malformed item bank row",
				slog.Int("row", i+2), // 1-based, counting the header
				slog.String("reason", err.Error()))
			continue
		}
		items = append(items, item)
	}

	slog.Info("item bank loaded", slog.Int("items", len(items)))
	return &Bank{items: items}, nil
}

// QuestionsForAge returns every item whose age window contains the given
// age in months, preserving source order. Returns nil when no item
// covers the age; the caller treats that as a no-coverage state, not an
// error.
func (b *Bank) QuestionsForAge(months int) []Item {
	var out []Item
	for _, it := range b.items {
		if it.MinMonths <= months && months <= it.MaxMonths {
			out = append(out, it)
		}
	}
	return out
}

// QuestionsForGroup returns every item in the given age group, preserving
// source order. Returns nil when the group has no items.
func (b *Bank) QuestionsForGroup(group int) []Item {
	var out []Item
	for _, it := range b.items {
		if it.Group == group {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of parsed items.
func (b *Bank) Len() int { return len(b.items) }

// Items returns the full parsed item list in source order.
func (b *Bank) Items() []Item { return b.items }

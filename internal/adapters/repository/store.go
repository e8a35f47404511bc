// Package repository keeps the recent history of selection events.
package repository

import (
	"context"

	"github.com/okian/gazeboard/internal/domain/model"
)

// Store provides read/write access to selection history.
type Store interface {
	// Add records ev. When the store is full the oldest event is evicted.
	Add(ctx context.Context, ev model.SelectionEvent) error

	// Get returns the event with the given id.
	// Returns ErrNotFound if it was never stored or has been evicted.
	Get(ctx context.Context, id string) (model.SelectionEvent, error)

	// Recent returns up to n events, newest first.
	Recent(ctx context.Context, n int) ([]model.SelectionEvent, error)

	// Count returns the number of events held.
	Count(ctx context.Context) int
}

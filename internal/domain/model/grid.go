package model

import (
	"errors"
	"fmt"
	"time"
)

// GridColumns is the fixed number of cells in every symbol-grid row.
const GridColumns = 8

// ErrColumnOutOfRange is returned when a column index does not exist in a row.
var ErrColumnOutOfRange = errors.New("column out of range")

// Grid is a row-major table of symbol cells.
type Grid [][]string

// Clone returns a deep copy so callers cannot mutate shared rows.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// SelectColumns keeps only the given column indices of every row, in the
// order given. The result has the same row count as g.
func (g Grid) SelectColumns(columns []int) (Grid, error) {
	out := make(Grid, len(g))
	for r, row := range g {
		picked := make([]string, len(columns))
		for i, c := range columns {
			if c < 0 || c >= len(row) {
				return nil, fmt.Errorf("row %d column %d: %w", r, c, ErrColumnOutOfRange)
			}
			picked[i] = row[c]
		}
		out[r] = picked
	}
	return out, nil
}

// SelectionEvent is emitted when a blink confirms a gaze direction while
// the selection machine is idle.
type SelectionEvent struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	Columns   []int     `json:"columns"`
	Grid      Grid      `json:"grid"`
	Category  string    `json:"category,omitempty"`
	At        time.Time `json:"at"`
	UnlockAt  time.Time `json:"unlock_at"`
}

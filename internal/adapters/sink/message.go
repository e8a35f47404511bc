package sink

import (
	"time"

	"github.com/okian/gazeboard/internal/domain/model"
)

// Message types published on the hub.
const (
	TypeStatus    = "status"
	TypeNoFace    = "no_face"
	TypeSelection = "selection"
	TypeUnlock    = "unlock"
	TypeCategory  = "category"
)

// Message is one event for the UI. Only the fields relevant to Type are
// set.
type Message struct {
	Type      string                `json:"type"`
	Seq       uint64                `json:"seq,omitempty"`
	Status    string                `json:"status,omitempty"`
	Direction *model.Direction      `json:"direction,omitempty"`
	Blinking  bool                  `json:"blinking,omitempty"`
	Openness  *float64              `json:"openness,omitempty"`
	Event     *model.SelectionEvent `json:"event,omitempty"`
	Category  string                `json:"category,omitempty"`
	Grid      model.Grid            `json:"grid,omitempty"`
	At        time.Time             `json:"at"`
}

// StatusMessage builds a status line update.
func StatusMessage(seq uint64, status model.EyeStatus, openness *float64, at time.Time) Message {
	d := status.Direction
	return Message{
		Type:      TypeStatus,
		Seq:       seq,
		Status:    status.String(),
		Direction: &d,
		Blinking:  status.Blinking,
		Openness:  openness,
		At:        at,
	}
}

// NoFaceMessage tells the UI to clear any overlay and status.
func NoFaceMessage(seq uint64, at time.Time) Message {
	return Message{Type: TypeNoFace, Seq: seq, At: at}
}

// SelectionMessage carries a selection and its reduced grid.
func SelectionMessage(seq uint64, ev *model.SelectionEvent) Message {
	d := ev.Direction
	return Message{
		Type:      TypeSelection,
		Seq:       seq,
		Direction: &d,
		Event:     ev,
		Category:  ev.Category,
		Grid:      ev.Grid,
		At:        ev.At,
	}
}

// GridMessage announces the full grid after an unlock or a category switch.
func GridMessage(msgType, category string, grid model.Grid, at time.Time) Message {
	return Message{Type: msgType, Category: category, Grid: grid, At: at}
}

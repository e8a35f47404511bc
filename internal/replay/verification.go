package replay

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/gazeboard/internal/adapters/http/api"
)

// verifyState compares the served state with what a step expects. prevID
// is the selection ID observed after the previous step.
func verifyState(want Expectation, st api.State, prevID string) error {
	var errs []error

	if st.FaceDetected != want.FaceDetected {
		errs = append(errs, fmt.Errorf("face_detected = %v, want %v", st.FaceDetected, want.FaceDetected))
	}
	if want.FaceDetected && st.Status != want.Status {
		errs = append(errs, fmt.Errorf("status = %q, want %q", st.Status, want.Status))
	}
	if st.Locked != want.Locked {
		errs = append(errs, fmt.Errorf("locked = %v, want %v", st.Locked, want.Locked))
	}

	if !want.Locked {
		return errors.Join(errs...)
	}
	if st.Selection == nil {
		return errors.Join(append(errs, errors.New("locked without a selection"))...)
	}
	if !slices.Equal(st.Selection.Columns, want.Columns) {
		errs = append(errs, fmt.Errorf("columns = %v, want %v", st.Selection.Columns, want.Columns))
	}
	for i, row := range st.Grid {
		if len(row) != len(want.Columns) {
			errs = append(errs, fmt.Errorf("grid row %d has %d cells, want %d", i, len(row), len(want.Columns)))
			break
		}
	}
	switch {
	case want.SameSelection && st.Selection.ID != prevID:
		errs = append(errs, fmt.Errorf("selection %s replaced %s while locked", st.Selection.ID, prevID))
	case want.NewSelection && st.Selection.ID == prevID:
		errs = append(errs, fmt.Errorf("selection %s was not replaced", prevID))
	}
	return errors.Join(errs...)
}

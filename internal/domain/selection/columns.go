package selection

import "github.com/okian/gazeboard/internal/domain/model"

// Fixed column subsets per direction. Together they cover every column of
// an 8-wide row exactly once.
var columnTable = map[model.Direction][]int{
	model.Left:   {5, 6, 7},
	model.Center: {3, 4},
	model.Right:  {0, 1, 2},
}

// Columns returns the column indices a selection in direction d keeps.
// The slice is a copy. Unknown directions yield nil.
func Columns(d model.Direction) []int {
	cols, ok := columnTable[d]
	if !ok {
		return nil
	}
	return append([]int(nil), cols...)
}

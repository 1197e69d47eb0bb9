// Package tableview derives the visible rows of the directory table from the
// raw record set plus the view state: filter, then sort, then paginate. The
// whole pipeline is pure and synchronous; it is recomputed on every keystroke
// without a round trip, so it must never block.
package tableview

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/shared"
)

// SortField selects the sort key.
type SortField string

const (
	SortFirstName SortField = "firstName"
	SortEmail     SortField = "email"
	SortRole      SortField = "role"
	SortCreatedAt SortField = "createdAt"
)

// Direction orders ascending or descending. Descending is the exact reverse
// of ascending, never an independently defined comparator, so the two
// directions can never tie-break differently.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec pairs a sort field with a direction.
type SortSpec struct {
	Field     SortField
	Direction Direction
}

// Apply runs the pipeline and returns the visible slice plus the total page
// count. A page beyond the last yields an empty slice, not an error; a
// non-positive page or page size is invalid input.
func Apply(records []directory.UserRecord, state State) ([]directory.UserRecord, int, error) {
	if state.PageSize <= 0 {
		return nil, 0, fmt.Errorf("%w: page size must be positive", shared.ErrValidation)
	}
	if state.Page < 1 {
		return nil, 0, fmt.Errorf("%w: page is 1-indexed", shared.ErrValidation)
	}

	filtered := filter(records, state.Search)
	sorted := sortRecords(filtered, state.Sort)

	pageCount := (len(sorted) + state.PageSize - 1) / state.PageSize

	start := (state.Page - 1) * state.PageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + state.PageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], pageCount, nil
}

// filter keeps a record iff the term is empty or a case-folded substring of
// email, first name or last name.
func filter(records []directory.UserRecord, term string) []directory.UserRecord {
	if term == "" {
		out := make([]directory.UserRecord, len(records))
		copy(out, records)
		return out
	}
	// A Caser is stateful, so build one per invocation rather than sharing.
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]directory.UserRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(fold.String(rec.Email), needle) ||
			strings.Contains(fold.String(rec.FirstName), needle) ||
			strings.Contains(fold.String(rec.LastName), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// sortRecords sorts ascending with a stable sort, keeping ties in input
// order, then reverses for descending.
func sortRecords(records []directory.UserRecord, spec SortSpec) []directory.UserRecord {
	out := make([]directory.UserRecord, len(records))
	copy(out, records)

	less := lessFunc(spec.Field)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })

	if spec.Direction == Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func lessFunc(field SortField) func(a, b directory.UserRecord) bool {
	switch field {
	case SortEmail:
		return func(a, b directory.UserRecord) bool { return a.Email < b.Email }
	case SortRole:
		return func(a, b directory.UserRecord) bool { return a.Role < b.Role }
	case SortCreatedAt:
		return func(a, b directory.UserRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b directory.UserRecord) bool { return a.FirstName < b.FirstName }
	}
}

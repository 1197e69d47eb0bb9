package tableview

// State is the ephemeral view state owned by the presentation layer. It is
// never persisted.
type State struct {
	Search   string
	Sort     SortSpec
	Page     int
	PageSize int
}

// NewState returns a state positioned on the first page.
func NewState(pageSize int) State {
	return State{
		Sort:     SortSpec{Field: SortCreatedAt, Direction: Descending},
		Page:     1,
		PageSize: pageSize,
	}
}

// SetSearch updates the search term. A changed term resets to the first page
// so the caller never lands on a page that no longer exists.
func (s *State) SetSearch(term string) {
	if term == s.Search {
		return
	}
	s.Search = term
	s.Page = 1
}

// SetSort replaces the sort spec.
func (s *State) SetSort(spec SortSpec) {
	s.Sort = spec
}

// SetPageSize changes the page size, clamping the current page to the new
// maximum valid page rather than resetting it.
func (s *State) SetPageSize(pageSize, total int) {
	if pageSize <= 0 {
		return
	}
	s.PageSize = pageSize
	s.ClampPage(pageCountFor(total, pageSize))
}

// ClampPage keeps the page inside [1, pageCount]. With zero pages the page
// stays at 1 so the next non-empty result starts at the beginning.
func (s *State) ClampPage(pageCount int) {
	if s.Page < 1 {
		s.Page = 1
	}
	if pageCount > 0 && s.Page > pageCount {
		s.Page = pageCount
	}
}

func pageCountFor(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

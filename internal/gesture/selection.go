package gesture

import "sort"

// Selection is the set of selected item ids. It lives in the interaction
// layer only, the committed model never records selection state.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Add puts an item id into the selection.
func (s *Selection) Add(id string) {
	s.ids[id] = struct{}{}
}

// Remove takes an item id out of the selection.
func (s *Selection) Remove(id string) {
	delete(s.ids, id)
}

// Toggle flips an item's membership.
func (s *Selection) Toggle(id string) {
	if s.Has(id) {
		s.Remove(id)
	} else {
		s.Add(id)
	}
}

// Has reports whether the item is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Len returns the number of selected items.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted for deterministic iteration.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// replace swaps in a whole new membership set.
func (s *Selection) replace(ids map[string]struct{}) {
	s.ids = ids
}

package loom

// Selection is the set of currently selected entity ids, of any kind.
// It preserves insertion order for stable notification payloads and is
// pruned synchronously when entities are deleted.
type Selection struct {
	ids   map[string]struct{}
	order []string

	// onChange is fired after every effective change with the full id list.
	// Wired by the Editor to the hub's selectionChanged event.
	onChange func(ids []string)
}

// NewSelection creates an empty selection set.
func NewSelection(onChange func(ids []string)) *Selection {
	return &Selection{
		ids:      make(map[string]struct{}),
		onChange: onChange,
	}
}

func (s *Selection) notify() {
	if s.onChange != nil {
		s.onChange(s.IDs())
	}
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []string {
	return append([]string{}, s.order...)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.order)
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Sole returns the single selected id when exactly one entity is selected.
func (s *Selection) Sole() (string, bool) {
	if len(s.order) == 1 {
		return s.order[0], true
	}
	return "", false
}

// Replace makes ids the entire selection.
func (s *Selection) Replace(ids ...string) {
	if s.equal(ids) {
		return
	}
	s.ids = make(map[string]struct{}, len(ids))
	s.order = s.order[:0]
	for _, id := range ids {
		if _, dup := s.ids[id]; dup {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.notify()
}

// Add selects ids in addition to the current selection.
func (s *Selection) Add(ids ...string) {
	changed := false
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
		changed = true
	}
	if changed {
		s.notify()
	}
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		s.order = removeID(s.order, id)
	} else {
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.notify()
}

// Remove deselects ids that are present.
func (s *Selection) Remove(ids ...string) {
	changed := false
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			continue
		}
		delete(s.ids, id)
		s.order = removeID(s.order, id)
		changed = true
	}
	if changed {
		s.notify()
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	if len(s.order) == 0 {
		return
	}
	s.ids = make(map[string]struct{})
	s.order = s.order[:0]
	s.notify()
}

// SelectRange replaces the selection with every node between fromID and
// toID (inclusive) in the store's stable creation order. Used by external
// list panels for shift-click ranges; unknown anchors select nothing.
func (s *Selection) SelectRange(g *Graph, fromID, toID string) {
	from, to := -1, -1
	for i, id := range g.nodeOrder {
		if id == fromID {
			from = i
		}
		if id == toID {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}
	if from > to {
		from, to = to, from
	}
	s.Replace(g.nodeOrder[from : to+1]...)
}

// Prune drops any listed ids from the selection. Called synchronously when
// entities are deleted so the selection never references a deleted id.
func (s *Selection) Prune(deleted ...string) {
	s.Remove(deleted...)
}

func (s *Selection) equal(ids []string) bool {
	if len(ids) != len(s.order) {
		return false
	}
	for i, id := range ids {
		if s.order[i] != id {
			return false
		}
	}
	return true
}

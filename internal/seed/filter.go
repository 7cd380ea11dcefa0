package seed

// IDSet holds the identifiers accepted for one entity during the current
// run. Dependent entities validate their foreign keys against it; whatever
// the store held before the run never counts.
type IDSet map[int32]struct{}

// NewIDSet returns an IDSet containing the given ids.
func NewIDSet(ids ...int32) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add records an accepted identifier.
func (s IDSet) Add(id int32) {
	s[id] = struct{}{}
}

// Has reports whether id was accepted in this run.
func (s IDSet) Has(id int32) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of accepted identifiers.
func (s IDSet) Len() int {
	return len(s)
}

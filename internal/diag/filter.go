package diag

// IgnoreSet is a set of diagnostic identifiers to suppress. It is built
// from configuration before a run and read-only afterwards.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an IgnoreSet from identifier strings.
func NewIgnoreSet(ids ...string) IgnoreSet {
	set := make(IgnoreSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set.
func (s IgnoreSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Filter returns the diagnostics whose identifier is not in the ignore-set,
// preserving the original relative order. The inputs are not mutated; an
// empty ignore-set returns a copy with identical contents.
func Filter(diags []Diagnostic, ignore IgnoreSet) []Diagnostic {
	kept := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if ignore.Contains(d.SName) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

package dispatch

// Snapshot is an immutable view of one group's candidates at a given version.
// Versions are unique across the whole registry and grow with every
// mutation, so a (group, version) pair never refers to two different lists.
type Snapshot struct {
	Group   string
	Version uint64

	candidates []*Candidate
	fallback   *Candidate
}

// Len returns the number of candidates, including the default.
func (s Snapshot) Len() int {
	n := len(s.candidates)
	if s.fallback != nil {
		n++
	}
	return n
}

// Candidates returns the candidates in resolution order: registration order
// first, the default last.
func (s Snapshot) Candidates() []*Candidate {
	out := make([]*Candidate, 0, s.Len())
	out = append(out, s.candidates...)
	if s.fallback != nil {
		out = append(out, s.fallback)
	}
	return out
}

// DefaultCandidate returns the group's default, or nil.
func (s Snapshot) DefaultCandidate() *Candidate {
	return s.fallback
}

// Resolve returns the first candidate whose predicate accepts args.
// Evaluation stops at the first match or the first predicate failure.
func (s Snapshot) Resolve(args Args) (*Candidate, error) {
	for _, c := range s.candidates {
		ok, err := c.Matches(args)
		if err != nil {
			return nil, &PredicateError{Group: s.Group, Order: c.Order, Label: c.Label, Err: err}
		}
		if ok {
			return c, nil
		}
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return nil, &NoMatchError{Group: s.Group, Evaluated: len(s.candidates), Args: args}
}

// with returns a copy of s that has c appended (or installed as default).
func (s Snapshot) with(c *Candidate, version uint64) *Snapshot {
	next := &Snapshot{Group: s.Group, Version: version, fallback: s.fallback}
	if c.Default {
		next.candidates = s.candidates
		next.fallback = c
		return next
	}
	next.candidates = make([]*Candidate, len(s.candidates), len(s.candidates)+1)
	copy(next.candidates, s.candidates)
	next.candidates = append(next.candidates, c)
	return next
}

// without returns a copy of s with c removed, and whether c was present.
// The copy carries no version; the caller stamps it.
func (s Snapshot) without(c *Candidate) (*Snapshot, bool) {
	if s.fallback == c {
		return &Snapshot{Group: s.Group, candidates: s.candidates}, true
	}
	for i, existing := range s.candidates {
		if existing != c {
			continue
		}
		rest := make([]*Candidate, 0, len(s.candidates)-1)
		rest = append(rest, s.candidates[:i]...)
		rest = append(rest, s.candidates[i+1:]...)
		return &Snapshot{Group: s.Group, candidates: rest, fallback: s.fallback}, true
	}
	return nil, false
}

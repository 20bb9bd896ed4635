package domain

// ErrorSet is an insertion-ordered set of human-readable error messages.
// Duplicates are dropped so that repeated validation passes never inflate the
// reported error list.
type ErrorSet struct {
	order []string
	seen  map[string]struct{}
}

// NewErrorSet constructs a set seeded with the supplied messages.
func NewErrorSet(msgs ...string) *ErrorSet {
	s := &ErrorSet{seen: make(map[string]struct{})}
	s.Add(msgs...)
	return s
}

// Add appends messages not already present, preserving first-seen order.
func (s *ErrorSet) Add(msgs ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, msg := range msgs {
		if msg == "" {
			continue
		}
		if _, ok := s.seen[msg]; ok {
			continue
		}
		s.seen[msg] = struct{}{}
		s.order = append(s.order, msg)
	}
}

// Merge folds another set into this one.
func (s *ErrorSet) Merge(other *ErrorSet) {
	if other == nil {
		return
	}
	s.Add(other.order...)
}

// Len reports the number of distinct messages.
func (s *ErrorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Empty reports whether the set holds no messages.
func (s *ErrorSet) Empty() bool { return s.Len() == 0 }

// List returns the messages in first-seen order. The returned slice is a
// copy; mutating it does not affect the set.
func (s *ErrorSet) List() []string {
	if s.Len() == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

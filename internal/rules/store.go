package rules

import (
	"sort"
	"sync"
)

// Store holds the active rule set: the built-in rules plus any overlay packs
// loaded on top. Reads take a consistent snapshot; writes replace the
// snapshot wholesale, so extraction running concurrently with a rule-pack
// upload sees either the old set or the new one, never a mix.
type Store struct {
	mu    sync.Mutex
	seq   int
	rules atomicRules
}

type atomicRules struct {
	mu       sync.RWMutex
	snapshot []*Rule
}

func (a *atomicRules) load() []*Rule {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

func (a *atomicRules) store(rs []*Rule) {
	a.mu.Lock()
	a.snapshot = rs
	a.mu.Unlock()
}

// NewStore returns a store seeded with the built-in rule set.
func NewStore() *Store {
	s := &Store{}
	if err := s.Add(BuiltinSpecs()...); err != nil {
		// Built-in specs are covered by tests; a compile failure here is a
		// programming error.
		panic(err)
	}
	return s
}

// NewEmptyStore returns a store with no rules, for tests and tooling.
func NewEmptyStore() *Store {
	return &Store{}
}

// Add compiles and installs the given specs. The call is atomic: if any spec
// fails validation, none are installed and the active set is unchanged.
func (s *Store) Add(specs ...Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	compiled := make([]*Rule, 0, len(specs))
	for i, spec := range specs {
		r, err := Compile(spec)
		if err != nil {
			return err
		}
		r.seq = s.seq + i
		compiled = append(compiled, r)
	}

	current := s.rules.load()
	next := make([]*Rule, 0, len(current)+len(compiled))
	next = append(next, current...)
	next = append(next, compiled...)
	sortRules(next)

	s.seq += len(compiled)
	s.rules.store(next)
	return nil
}

// Snapshot returns the active rules ordered by descending priority, with
// insertion order breaking ties. The returned slice must not be mutated.
func (s *Store) Snapshot() []*Rule {
	return s.rules.load()
}

// Len reports the number of active rules.
func (s *Store) Len() int {
	return len(s.rules.load())
}

func sortRules(rs []*Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].spec.Priority != rs[j].spec.Priority {
			return rs[i].spec.Priority > rs[j].spec.Priority
		}
		return rs[i].seq < rs[j].seq
	})
}

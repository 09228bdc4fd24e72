package chat

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestRegistry_RegisterRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()

	s1 := &Session{ID: "s1", alive: true}
	s2 := &Session{ID: "s2", alive: true}

	if err := r.Register("alice", s1); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := r.Register("alice", s2); err != ErrNameTaken {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	if got := r.Lookup("alice"); got != s1 {
		t.Fatalf("duplicate register must not replace the existing session")
	}
}

func TestRegistry_NamesAreCaseSensitive(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("alice", &Session{alive: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("Alice", &Session{alive: true}); err != nil {
		t.Fatalf("distinct casing is a distinct name, got %v", err)
	}
}

func TestRegistry_ConcurrentDistinctNamesAllSucceed(t *testing.T) {
	r := NewRegistry()

	const n = 64
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("user%02d", i)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs[i] = r.Register(name, &Session{alive: true})
		}(i, name)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("register(%s) error: %v", names[i], err)
		}
	}

	got := r.SnapshotNames()
	if len(got) != n {
		t.Fatalf("expected %d names, got %d", n, len(got))
	}
	sort.Strings(got)
	for i := range names {
		if got[i] != names[i] {
			t.Fatalf("snapshot mismatch at %d: got %q want %q", i, got[i], names[i])
		}
	}
}

func TestRegistry_ConcurrentSameNameExactlyOneWins(t *testing.T) {
	r := NewRegistry()

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Register("alice", &Session{alive: true})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case ErrNameTaken:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if r.Len() != 1 {
		t.Fatalf("registry holds %d entries for one name", r.Len())
	}
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("alice", &Session{alive: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	r.Unregister("alice")
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}

	// Second removal of the same name must be a no-op.
	r.Unregister("alice")
	if r.Len() != 0 {
		t.Fatalf("idempotent unregister changed state")
	}

	if err := r.Register("alice", &Session{alive: true}); err != nil {
		t.Fatalf("name must be reusable after unregister, got %v", err)
	}
}

func TestRegistry_LookupAbsentReturnsNil(t *testing.T) {
	r := NewRegistry()
	if got := r.Lookup("ghost"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

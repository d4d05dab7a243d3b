package viewstate

import (
	"strings"
	"sync"
	"testing"
)

func TestKeyIsStableAndNameBased(t *testing.T) {
	a1 := Key("nightly-sync")
	a2 := Key("nightly-sync")
	b := Key("hourly-print")
	if a1 != a2 {
		t.Fatalf("expected stable key; got %q and %q", a1, a2)
	}
	if a1 == b {
		t.Fatalf("expected distinct names to get distinct keys; both %q", a1)
	}
	if !strings.HasPrefix(a1, "group-") || len(a1) != len("group-")+12 {
		t.Fatalf("unexpected key shape %q", a1)
	}
}

func TestToggleIsSelfInverse(t *testing.T) {
	s := New()
	k := Key("A")

	if s.Has(k) {
		t.Fatalf("expected empty set at start")
	}
	if !s.Toggle(k) {
		t.Fatalf("expected first toggle to expand")
	}
	if !s.Has(k) || s.Len() != 1 {
		t.Fatalf("expected %q to be recorded as expanded", k)
	}
	if s.Toggle(k) {
		t.Fatalf("expected second toggle to collapse")
	}
	if s.Has(k) || s.Len() != 0 {
		t.Fatalf("expected state restored after two toggles")
	}
}

func TestZeroValueAndNil(t *testing.T) {
	var s Set
	if !s.Toggle("group-x") {
		t.Fatalf("expected zero-value set to accept toggles")
	}
	var nilSet *Set
	if nilSet.Has("group-x") || nilSet.Len() != 0 || nilSet.Keys() != nil {
		t.Fatalf("expected nil set to read as empty")
	}
}

func TestKeysSorted(t *testing.T) {
	s := New()
	s.Toggle("group-b")
	s.Toggle("group-a")
	got := s.Keys()
	if len(got) != 2 || got[0] != "group-a" || got[1] != "group-b" {
		t.Fatalf("expected sorted keys; got %v", got)
	}
}

func TestConcurrentToggle(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle("group-a")
		}()
	}
	wg.Wait()
	if s.Has("group-a") {
		t.Fatalf("expected an even number of toggles to leave the group collapsed")
	}
}

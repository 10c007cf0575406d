package keyed

import (
	"sort"
	"testing"
)

func TestZeroValueForUnknownKey(t *testing.T) {
	s := NewStore[int64, int]()
	if got := s.Get(42); got != 0 {
		t.Errorf("Get(42) = %d, want zero value", got)
	}
	if _, ok := s.Lookup(42); ok {
		t.Error("Lookup should report absence for unknown key")
	}
}

func TestSetGetDelete(t *testing.T) {
	s := NewStore[string, []int]()
	s.Set("a", []int{1, 2})
	if got := s.Get("a"); len(got) != 2 {
		t.Errorf("Get(a) = %v", got)
	}
	s.Delete("a")
	if _, ok := s.Lookup("a"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestUpdateStartsFromZero(t *testing.T) {
	type state struct {
		Loading bool
		Page    int
	}
	s := NewStore[int64, state]()
	s.Update(7, func(v state) state {
		v.Loading = true
		return v
	})
	if !s.Get(7).Loading {
		t.Error("Update on unset key should apply fn to the zero value")
	}
	s.Update(7, func(v state) state {
		v.Page = 3
		return v
	})
	got := s.Get(7)
	if !got.Loading || got.Page != 3 {
		t.Errorf("state = %+v, want Loading retained and Page=3", got)
	}
}

func TestClearAndKeys(t *testing.T) {
	s := NewStore[int64, string]()
	s.Set(1, "a")
	s.Set(2, "b")
	s.Set(3, "c")

	keys := s.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) != 3 || keys[0] != 1 || keys[2] != 3 {
		t.Errorf("Keys() = %v", keys)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear should drop all state")
	}
}

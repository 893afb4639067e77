package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.GetBytes("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.SetBytes("k", []byte("value"), time.Minute)
	got, ok := s.GetBytes("k")
	if !ok || !bytes.Equal(got, []byte("value")) {
		t.Fatalf("GetBytes = %q, %v; want value, true", got, ok)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	s.SetBytes("k", []byte("v"), 10*time.Millisecond)

	if _, ok := s.GetBytes("k"); !ok {
		t.Fatal("entry should be present before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := s.GetBytes("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestMemoryStoreClearAndDelete(t *testing.T) {
	s := NewMemoryStore()
	s.SetBytes("a", []byte("1"), time.Minute)
	s.SetBytes("b", []byte("2"), time.Minute)

	s.Delete("a")
	if _, ok := s.GetBytes("a"); ok {
		t.Fatal("deleted key should be gone")
	}
	if _, ok := s.GetBytes("b"); !ok {
		t.Fatal("other key should survive Delete")
	}

	s.Clear()
	if _, ok := s.GetBytes("b"); ok {
		t.Fatal("Clear should remove all entries")
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	s := NewMemoryStore()
	src := []byte("original")
	s.SetBytes("k", src, time.Minute)
	src[0] = 'X'

	got, _ := s.GetBytes("k")
	if !bytes.Equal(got, []byte("original")) {
		t.Fatalf("stored value mutated: %q", got)
	}
}

func TestMemoryStoreIgnoresNonPositiveTTL(t *testing.T) {
	s := NewMemoryStore()
	s.SetBytes("k", []byte("v"), 0)
	if _, ok := s.GetBytes("k"); ok {
		t.Fatal("zero TTL should not store")
	}
}

func TestSetJSON(t *testing.T) {
	s := NewMemoryStore()
	SetJSON(s, "k", map[string]int{"n": 1}, time.Minute)
	got, ok := s.GetBytes("k")
	if !ok || string(got) != `{"n":1}` {
		t.Fatalf("SetJSON stored %q, %v", got, ok)
	}
}

package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStore_RoundtripAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := NewBoltStore(path, 10*time.Second, testLogger())
	if err != nil {
		t.Fatalf("opening bolt store: %v", err)
	}
	s1.Set("k", []string{"a", "b"})

	var got []string
	if !s1.Get("k", &got) {
		t.Fatal("expected hit after Set")
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	s2, err := NewBoltStore(path, 10*time.Second, testLogger())
	if err != nil {
		t.Fatalf("reopening bolt store: %v", err)
	}
	defer s2.Close()

	got = nil
	if !s2.Get("k", &got) {
		t.Fatal("expected durable hit after reopen")
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestBoltStore_Expiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := NewBoltStore(path, 10*time.Second, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	base := time.Unix(1700000000, 0).UTC()
	s.now = func() time.Time { return base }
	s.Set("k", "v")

	s.now = func() time.Time { return base.Add(11 * time.Second) }
	var got string
	if s.Get("k", &got) {
		t.Error("expected miss after lifetime elapsed")
	}
}

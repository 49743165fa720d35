package registry

import "testing"

func TestChannelRegistryGetPut(t *testing.T) {
	r := NewChannelRegistry()

	if _, ok := r.Get("abc-123"); ok {
		t.Fatal("expected miss on empty registry")
	}

	r.Put("abc-123", "chan-1")
	id, ok := r.Get("abc-123")
	if !ok || id != "chan-1" {
		t.Fatalf("expected chan-1, got %q (ok=%v)", id, ok)
	}

	// Put replaces an existing entry
	r.Put("abc-123", "chan-2")
	if id, _ := r.Get("abc-123"); id != "chan-2" {
		t.Fatalf("expected chan-2 after replace, got %q", id)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestLinkRegistry(t *testing.T) {
	r := NewLinkRegistry()

	if r.IsLinked("abc-123") {
		t.Fatal("expected unlinked on empty registry")
	}

	r.Link("abc-123", "discord-user-1")
	if !r.IsLinked("abc-123") {
		t.Fatal("expected linked after Link")
	}
	if id, _ := r.Get("abc-123"); id != "discord-user-1" {
		t.Fatalf("expected discord-user-1, got %q", id)
	}

	// A second link silently overwrites
	r.Link("abc-123", "discord-user-2")
	if id, _ := r.Get("abc-123"); id != "discord-user-2" {
		t.Fatalf("expected discord-user-2 after relink, got %q", id)
	}
}

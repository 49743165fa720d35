package registry

import "sync"

// LinkRegistry maps player UUIDs to the Discord account that claimed them.
// A second redemption for the same player silently overwrites the link;
// there is no unlink operation.
type LinkRegistry struct {
	mu    sync.RWMutex
	links map[string]string
}

func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{links: make(map[string]string)}
}

// Link records the Discord user for a player.
func (r *LinkRegistry) Link(uuid, discordUserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[uuid] = discordUserID
}

// Get returns the linked Discord user ID for a player, if any.
func (r *LinkRegistry) Get(uuid string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.links[uuid]
	return id, ok
}

// IsLinked reports whether the player already has a linked Discord account.
func (r *LinkRegistry) IsLinked(uuid string) bool {
	_, ok := r.Get(uuid)
	return ok
}

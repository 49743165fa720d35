package registry

import "sync"

// ChannelRegistry maps player UUIDs to the Discord channel created for them.
// Entries live for the lifetime of the process; there is no eviction.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]string
}

func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]string)}
}

// Get returns the channel ID recorded for a player, if any.
func (r *ChannelRegistry) Get(uuid string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.channels[uuid]
	return id, ok
}

// Put records the channel ID for a player, replacing any previous entry.
func (r *ChannelRegistry) Put(uuid, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[uuid] = channelID
}

// Len reports the number of tracked channels.
func (r *ChannelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

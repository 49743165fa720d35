package registry

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// DefaultCodeTTL is how long a verification code stays redeemable.
	DefaultCodeTTL = 5 * time.Minute
)

type codeEntry struct {
	uuid      string
	expiresAt time.Time
}

// CodeStore holds short-lived verification codes mapping back to a player
// UUID. A code is single-use: the first successful Redeem removes it.
// Expired codes are dropped lazily on Redeem and in bulk by Sweep.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]codeEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCodeStore(ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeStore{
		codes: make(map[string]codeEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the configured code lifetime.
func (s *CodeStore) TTL() time.Duration {
	return s.ttl
}

// Issue generates a new code for the player and stores it with an expiry.
// An earlier unredeemed code for the same player stays valid alongside the
// new one. Collision with a live code is retried a bounded number of times.
func (s *CodeStore) Issue(uuid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		c, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := s.codes[c]; !taken || attempt >= 5 {
			code = c
			break
		}
	}

	s.codes[code] = codeEntry{uuid: uuid, expiresAt: s.now().Add(s.ttl)}
	return code, nil
}

// Redeem consumes a code and returns the player UUID it was issued for.
// The code is uppercased before lookup. Unknown and expired codes are
// indistinguishable to the caller; an expired entry is removed on the spot.
func (s *CodeStore) Redeem(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[code]
	if !ok {
		return "", false
	}
	delete(s.codes, code)
	if s.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.uuid, true
}

// Sweep drops all expired codes and returns how many were removed.
func (s *CodeStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for code, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, code)
			removed++
		}
	}
	return removed
}

func generateCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

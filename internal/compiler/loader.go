package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	gocache "github.com/patrickmn/go-cache"
)

// Loader parses and validates scripts once, caching the result by content hash.
// Cached scripts are shared and must be treated as read-only.
type Loader struct {
	parser *Parser
	known  KnownType
	cache  *gocache.Cache
}

// NewLoader creates a loader. Entries expire after ttl of disuse; zero keeps them forever.
func NewLoader(known KnownType, ttl time.Duration) *Loader {
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	return &Loader{
		parser: NewParser(),
		known:  known,
		cache:  gocache.New(exp, 10*time.Minute),
	}
}

// Load returns the validated script for source.
func (l *Loader) Load(source []byte) (*domain.Script, error) {
	key := Hash(source)
	if v, ok := l.cache.Get(key); ok {
		return v.(*domain.Script), nil
	}

	script, err := l.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	if err := Validate(script, l.known); err != nil {
		return nil, err
	}

	l.cache.SetDefault(key, script)
	return script, nil
}

// Cached reports how many scripts are cached.
func (l *Loader) Cached() int {
	return l.cache.ItemCount()
}

// Hash returns the cache key of a script source.
func Hash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Package idgen provides run and snapshot identifiers.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// TimeOrdered generates UUIDv7 identifiers, which sort by creation time.
type TimeOrdered struct{}

// New returns a new identifier. It falls back to a random UUID if the
// time-based generator fails.
func (TimeOrdered) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var _ ports.IDGenerator = TimeOrdered{}

// Counter generates prefix-1, prefix-2, ... (for testing).
type Counter struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCounter creates a counter with the given prefix.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// New returns the next identifier.
func (c *Counter) New() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("%s-%d", c.prefix, c.n)
}

var _ ports.IDGenerator = (*Counter)(nil)

package feed

import (
	"sync"

	"github.com/citycal/citycal/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Cache holds rendered feeds until the event collection changes. Each Clear
// starts a new generation; bodies rendered in an older generation are refused.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]string
	generation uint64
}

func NewCache(eventBus *event_bus.EventBus) *Cache {
	c := &Cache{entries: make(map[string]string)}
	event_bus.SubscribeTyped(eventBus, event_bus.EventsChangedType, func(e event_bus.EventT[event_bus.EventsChanged]) error {
		log.Debugf("Events %s, dropping cached feeds", e.Data.Action)
		c.Clear()
		return nil
	})
	return c
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.entries[key]
	return body, ok
}

// Generation must be read before loading the events a body is rendered from.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Put stores body unless the cache was cleared since generation was read.
func (c *Cache) Put(key string, body string, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.entries[key] = body
	return true
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.generation++
}

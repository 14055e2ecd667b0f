// Package cache keeps recently produced summaries so an identical document
// is not sent through the remote models twice.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
)

const (
	DefaultCapacity = 256
	DefaultTTL      = time.Hour
)

// Results is a TTL-bounded LRU of summaries keyed by document hash. A nil
// *Results is a valid cache that never hits.
type Results struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time
	metrics  *telemetry.MetricsCollector
}

type entry struct {
	key       string
	result    *pipeline.SummaryResult
	expiresAt time.Time
}

// New creates a cache. A non-positive capacity disables caching and
// returns nil.
func New(capacity int, ttl time.Duration, metrics *telemetry.MetricsCollector) *Results {
	if capacity <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Results{
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		metrics:  metrics,
	}
}

// Get returns a copy of the cached result for key.
func (c *Results) Get(key string) (*pipeline.SummaryResult, bool) {
	if c == nil || key == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.count(telemetry.MetricCacheMisses)
		return nil, false
	}

	e := elem.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(elem)
		c.count(telemetry.MetricCacheMisses)
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.count(telemetry.MetricCacheHits)
	return e.result.Clone(), true
}

// Put stores a copy of result under key, replacing any previous entry.
func (c *Results) Put(key string, result *pipeline.SummaryResult) {
	if c == nil || key == "" || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.result = result.Clone()
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry{key: key, result: result.Clone(), expiresAt: expiresAt})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	for len(c.entries) > c.capacity {
		c.removeElement(c.order.Back())
	}
	c.gauge()
}

// Len reports the number of entries, expired ones included until evicted.
func (c *Results) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Results) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *Results) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry).key)
	c.order.Remove(elem)
	c.gauge()
}

func (c *Results) count(name string) {
	if c.metrics != nil {
		c.metrics.IncrementCounter(name, 1)
	}
}

func (c *Results) gauge() {
	if c.metrics != nil {
		c.metrics.SetGauge(telemetry.MetricCacheSize, float64(len(c.entries)))
	}
}

// Package catalog keeps the locally held lists behind the category and menu-item
// screens. Lists are loaded once and then patched record by record after the API
// confirms each change.
package catalog

import (
	"sort"
	"strings"
	"sync"
)

// Record is anything the list screens can sort and search.
type Record interface {
	Key() string
	Title() string
	Summary() string
}

type Collection[T Record] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
}

func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{}
}

// Load replaces the whole list, as a fresh fetch does.
func (c *Collection[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(make([]T, 0, len(items)), items...)
	c.loaded = true
}

func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns a copy of the record so edits do not touch the list until saved.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Add appends a created record. A record whose id is already present replaces it.
func (c *Collection[T]) Add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.Key() == item.Key() {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// Replace swaps the record with the same id. It reports false when the id is unknown.
func (c *Collection[T]) Replace(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.Key() == item.Key() {
			c.items[i] = item
			return true
		}
	}
	return false
}

// Remove drops the record with id and leaves the others untouched.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.Key() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// View returns the records matching query sorted by name. An empty query matches all.
func (c *Collection[T]) View(query string) []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.items))
	q := strings.ToLower(strings.TrimSpace(query))
	for _, it := range c.items {
		if Matches(it, q) {
			out = append(out, it)
		}
	}
	c.mu.RUnlock()

	SortByName(out)
	return out
}

// Matches is a case-insensitive substring test over name and description.
// q must already be lower-cased.
func Matches(r Record, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title()), q) ||
		strings.Contains(strings.ToLower(r.Summary()), q)
}

func SortByName[T Record](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Title()), strings.ToLower(items[j].Title())
		if a != b {
			return a < b
		}
		return items[i].Key() < items[j].Key()
	})
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syncer orchestrates annotation sync: per-item submission,
// sequential batching with pacing, and idempotent dedup tracking.
package syncer

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pdiddy/capsync/internal/prefs"
)

// processedKey is the preference key holding the processed-item set,
// serialized as a JSON array of item keys.
const processedKey = "processed_items"

// Dedup is the persisted set of item keys already submitted successfully.
// An entry is added only after a successful remote submission and removed
// only by explicit user action; the set never expires.
//
// The mutex makes the read-modify-write cycles safe should a future
// caller sync concurrently; the batch loop itself is strictly sequential.
type Dedup struct {
	mu    sync.Mutex
	prefs prefs.Store
}

// NewDedup wraps a preference store.
func NewDedup(p prefs.Store) *Dedup {
	return &Dedup{prefs: p}
}

// load deserializes the set defensively: a missing or corrupt value is an
// empty set, not an error.
func (d *Dedup) load() map[string]bool {
	raw := d.prefs.Get(processedKey)
	if raw == "" {
		raw = "[]"
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return map[string]bool{}
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func (d *Dedup) save(set map[string]bool) error {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return d.prefs.Set(processedKey, string(data))
}

// IsProcessed reports whether an item key was already synced.
func (d *Dedup) IsProcessed(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()[key]
}

// Add records a successful submission.
func (d *Dedup) Add(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.load()
	set[key] = true
	return d.save(set)
}

// Remove forgets a single item so it can be synced again.
func (d *Dedup) Remove(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.load()
	delete(set, key)
	return d.save(set)
}

// Clear forgets all processed items.
func (d *Dedup) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prefs.Set(processedKey, "[]")
}

// Count returns the number of processed items.
func (d *Dedup) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.load())
}

// Package remoteconfig keeps an in-memory index of the remotely stored meta
// sheet and the polling loop that keeps it synchronized.
package remoteconfig

import (
	"log"
	"sort"
	"strings"
	"sync"
)

// Item is one fact from the meta sheet. Keys are not unique across types;
// (key, type) pairs are.
type Item struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Match is the result of a reverse lookup.
type Match struct {
	Key  string
	Type string
}

// Index maps key -> type -> value. It has a single writer (the Syncer) and
// many readers; all access goes through the RWMutex.
type Index struct {
	mu    sync.RWMutex
	items map[string]map[string]string

	// Verbose enables lookup-miss logging.
	Verbose bool
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{items: make(map[string]map[string]string)}
}

// Merge folds a batch of items into the index, last write winning per
// (key, type) pair. Entries absent from the batch are retained: the index
// never regresses to empty when the upstream sheet shrinks.
func (ix *Index) Merge(items []Item) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, item := range items {
		if ix.items[item.Key] == nil {
			ix.items[item.Key] = make(map[string]string)
		}
		ix.items[item.Key][item.Type] = item.Value
	}
}

// Get resolves a composite "key:type" handle. The handle is split on the
// first colon. A missing key or type is reported as absent, never an error.
func (ix *Index) Get(compositeKey string) (string, bool) {
	key, typ, _ := strings.Cut(compositeKey, ":")

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	types, ok := ix.items[key]
	if !ok {
		ix.debugf("key %q not found in remote config", compositeKey)
		return "", false
	}
	value, ok := types[typ]
	return value, ok
}

// Key returns a copy of every typed value stored under key. Mutating the
// returned map never affects the index.
func (ix *Index) Key(key string) (map[string]string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	types, ok := ix.items[key]
	if !ok {
		ix.debugf("key %q not found in remote config", key)
		return nil, false
	}
	copied := make(map[string]string, len(types))
	for typ, value := range types {
		copied[typ] = value
	}
	return copied, true
}

// ByType returns key -> value for every key carrying the given type, or nil
// when no key does.
func (ix *Index) ByType(typ string) map[string]string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var rtn map[string]string
	for key, types := range ix.items {
		if value, ok := types[typ]; ok {
			if rtn == nil {
				rtn = make(map[string]string)
			}
			rtn[key] = value
		}
	}
	if rtn == nil {
		ix.debugf("type %q not found in remote config", typ)
	}
	return rtn
}

// ReverseLookup finds the first (key, type) pair holding value, scanning in
// sorted key then type order so repeated calls on an unchanged index agree.
// Values are not unique; callers get the first match only.
func (ix *Index) ReverseLookup(value string) (Match, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, len(ix.items))
	for key := range ix.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		types := ix.items[key]
		typeNames := make([]string, 0, len(types))
		for typ := range types {
			typeNames = append(typeNames, typ)
		}
		sort.Strings(typeNames)

		for _, typ := range typeNames {
			if types[typ] == value {
				return Match{Key: key, Type: typ}, true
			}
		}
	}

	ix.debugf("value %q not found in remote config", value)
	return Match{}, false
}

func (ix *Index) debugf(format string, args ...any) {
	if ix.Verbose {
		log.Printf(format, args...)
	}
}

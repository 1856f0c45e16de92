// Package memo is the in-process tier of the marker response cache.
package memo

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 256

// Memo holds encoded responses by key. lru.Cache is internally locked, so
// Memo is safe for concurrent use.
type Memo struct {
	lru *lru.Cache[string, []byte]
}

// New returns a memo of size entries; size <= 0 selects the default.
func New(size int) *Memo {
	if size <= 0 {
		size = defaultSize
	}
	c, _ := lru.New[string, []byte](size)
	return &Memo{lru: c}
}

// Get returns the stored bytes. Callers must not modify them.
func (m *Memo) Get(key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *Memo) Add(key string, val []byte) {
	m.lru.Add(key, val)
}

func (m *Memo) Len() int { return m.lru.Len() }

func (m *Memo) Purge() { m.lru.Purge() }

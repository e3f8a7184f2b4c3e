package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fathomupload/internal/document"
	"fathomupload/internal/store"
)

// memStore 模拟带 (uuid, objectId) 唯一索引、拒绝含 "." 与 "$" 字段名的存储。
type memStore struct {
	mu        sync.Mutex
	docs      map[string][]document.Document
	seen      map[string]bool
	calls     map[string]int
	failWith  map[string]error
	beforeRun func(destination string)
}

func newMemStore() *memStore {
	return &memStore{
		docs:     make(map[string][]document.Document),
		seen:     make(map[string]bool),
		calls:    make(map[string]int),
		failWith: make(map[string]error),
	}
}

func (m *memStore) InsertBatch(_ context.Context, destination string, docs []document.Document) (int, error) {
	if m.beforeRun != nil {
		m.beforeRun(destination)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[destination]++
	if err, ok := m.failWith[destination]; ok {
		return 0, err
	}
	inserted, dup, invalid := 0, 0, 0
	for _, doc := range docs {
		if hasReservedKey(doc) {
			invalid++
			continue
		}
		key := fmt.Sprintf("%s|%v|%v", destination, doc[document.FieldUUID], doc[document.FieldObjectID])
		if m.seen[key] {
			dup++
			continue
		}
		m.seen[key] = true
		m.docs[destination] = append(m.docs[destination], doc)
		inserted++
	}
	switch {
	case invalid > 0:
		return inserted, &store.InsertError{Class: store.ClassInvalidFieldName, Err: errors.New("key must not contain '.'")}
	case dup > 0:
		return inserted, &store.InsertError{Class: store.ClassDuplicateKey, Err: errors.New("E11000 duplicate key error")}
	}
	return inserted, nil
}

func (m *memStore) callCount(destination string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[destination]
}

func (m *memStore) stored(destination string) []document.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]document.Document(nil), m.docs[destination]...)
}

func hasReservedKey(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if strings.ContainsAny(k, ".$") || hasReservedKey(item) {
				return true
			}
		}
	case []any:
		for _, item := range val {
			if hasReservedKey(item) {
				return true
			}
		}
	}
	return false
}

type fakeStats struct {
	mu      sync.Mutex
	uploads int
	errors  int
	calls   int
	err     error
}

func (f *fakeStats) IncrementUpload(_ context.Context, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.uploads += count
	return f.err
}

func (f *fakeStats) IncrementError(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.errors++
	return f.err
}

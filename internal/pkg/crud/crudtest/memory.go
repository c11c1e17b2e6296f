// Package crudtest provides an in-memory crud.Repository for service tests.
package crudtest

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

// Accessors tell the memory repository how to read and assign keys on T
type Accessors[T any] struct {
	ID    func(*T) *uint
	Slug  func(*T) string
	Match func(*T, crud.Where) bool
}

// Memory is a map backed repository. Keyword search and sorting are ignored.
type Memory[T any] struct {
	mu       sync.Mutex
	items    map[uint]T
	nextID   uint
	acc      Accessors[T]
	notFound error
}

// NewMemory creates an empty repository
func NewMemory[T any](acc Accessors[T], notFound error) *Memory[T] {
	if notFound == nil {
		notFound = crud.ErrNotFound
	}
	return &Memory[T]{items: map[uint]T{}, nextID: 1, acc: acc, notFound: notFound}
}

func (m *Memory[T]) Create(_ context.Context, v *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.acc.ID(v) = m.nextID
	m.nextID++
	m.items[*m.acc.ID(v)] = *v
	return nil
}

func (m *Memory[T]) Save(_ context.Context, v *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := *m.acc.ID(v)
	if id == 0 {
		id = m.nextID
		m.nextID++
		*m.acc.ID(v) = id
	}
	m.items[id] = *v
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return m.notFound
	}
	delete(m.items, id)
	return nil
}

func (m *Memory[T]) FindByID(_ context.Context, id uint) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[id]
	if !ok {
		return nil, m.notFound
	}
	return &v, nil
}

func (m *Memory[T]) FindBySlug(_ context.Context, slug string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.items {
		if m.acc.Slug != nil && m.acc.Slug(&v) == slug {
			return &v, nil
		}
	}
	return nil, m.notFound
}

func (m *Memory[T]) SlugTaken(_ context.Context, slug string, exceptID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.items {
		if id != exceptID && m.acc.Slug != nil && m.acc.Slug(&v) == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory[T]) List(ctx context.Context, q pagination.Query, where crud.Where) ([]T, int64, error) {
	all, _ := m.All(ctx, where)
	total := int64(len(all))
	start := q.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *Memory[T]) All(_ context.Context, where crud.Where) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.items))
	for _, v := range m.items {
		if len(where) > 0 && m.acc.Match != nil && !m.acc.Match(&v, where) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return *m.acc.ID(&out[i]) < *m.acc.ID(&out[j]) })
	return out, nil
}

// Len reports how many records are stored
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

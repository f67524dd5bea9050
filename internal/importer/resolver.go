package importer

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ResolverFuncs supplies the storage operations a Resolver needs for one
// lookup-entity kind. Find returns (nil, nil) when no row matches.
type ResolverFuncs[T any] struct {
	LoadAll func() ([]*T, error)
	Find    func(name string) (*T, error)
	Create  func(name string) (*T, error)
	Name    func(*T) string
}

// Resolver implements find-or-create for one lookup-entity kind, backed by
// an identity cache keyed on the entity's name. It is safe for concurrent
// use; the create-then-recover path is what guarantees at most one row per
// name when two writers race.
type Resolver[T any] struct {
	kind string
	fns  ResolverFuncs[T]

	mu      sync.Mutex
	cache   map[string]*T
	created int
}

func NewResolver[T any](kind string, fns ResolverFuncs[T]) *Resolver[T] {
	return &Resolver[T]{
		kind:  kind,
		fns:   fns,
		cache: make(map[string]*T),
	}
}

// NewLookupResolver builds a Resolver over a GORM-mapped lookup table with
// a unique name column.
func NewLookupResolver[T any](db *gorm.DB, kind string, mk func(name string) *T, nameOf func(*T) string) *Resolver[T] {
	return NewResolver(kind, ResolverFuncs[T]{
		LoadAll: func() ([]*T, error) {
			var rows []*T
			if err := db.Find(&rows).Error; err != nil {
				return nil, err
			}
			return rows, nil
		},
		Find: func(name string) (*T, error) {
			v := new(T)
			err := db.Where("name = ?", name).First(v).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		Create: func(name string) (*T, error) {
			v := mk(name)
			if err := db.Create(v).Error; err != nil {
				return nil, err
			}
			return v, nil
		},
		Name: nameOf,
	})
}

// Preload seeds the cache with every existing row of this kind.
func (r *Resolver[T]) Preload() error {
	rows, err := r.fns.LoadAll()
	if err != nil {
		return fmt.Errorf("preload %s cache: %w", r.kind, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range rows {
		r.cache[r.fns.Name(v)] = v
	}
	return nil
}

// Resolve returns the entity named name, creating it when absent. When the
// create loses a uniqueness race the winning row is re-read and returned;
// only a failure of that re-read is fatal.
func (r *Resolver[T]) Resolve(name string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache[name]; ok {
		return v, nil
	}

	// The cache was seeded before the run started; the row may have been
	// inserted by another writer since.
	v, err := r.fns.Find(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", r.kind, name, err)
	}
	if v != nil {
		r.cache[name] = v
		return v, nil
	}

	v, createErr := r.fns.Create(name)
	if createErr != nil {
		v, err = r.fns.Find(name)
		if err != nil || v == nil {
			return nil, fmt.Errorf("resolve %s %q: %w", r.kind, name, createErr)
		}
		r.cache[name] = v
		return v, nil
	}

	r.created++
	r.cache[name] = v
	return v, nil
}

// Created reports how many entities this resolver persisted.
func (r *Resolver[T]) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

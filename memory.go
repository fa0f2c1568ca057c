package columnar

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
)

// Releasable represents any resource that can be released to free memory.
//
// Arrays of this package are garbage collected. Arrow arrays handed out by
// ToArrow are reference counted and must be released; the recommended
// pattern is to use defer:
//
//	arr, err := columnar.ToArrow(values)
//	if err != nil {
//		return err
//	}
//	defer arr.Release()
type Releasable interface {
	Release()
}

// MemoryManager tracks Arrow resources and releases them in bulk.
//
// Use MemoryManager when many short-lived Arrow arrays are exported in a loop
// and individual defer statements are impractical.
//
// The MemoryManager is safe for concurrent use from multiple goroutines.
//
// Example:
//
//	err := columnar.WithMemoryManager(func(manager *columnar.MemoryManager) error {
//		for _, column := range columns {
//			arr, err := manager.ToArrow(column)
//			if err != nil {
//				return err
//			}
//			send(arr)
//		}
//		return nil
//	})
//	// All exported arrays are released here
type MemoryManager struct {
	resources []Releasable
	mu        sync.Mutex
}

// NewMemoryManager creates a new, empty memory manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		resources: make([]Releasable, 0),
	}
}

// Track adds a resource to be released by ReleaseAll.
func (m *MemoryManager) Track(resource Releasable) {
	if resource != nil {
		m.mu.Lock()
		m.resources = append(m.resources, resource)
		m.mu.Unlock()
	}
}

// ToArrow exports a with ToArrow and tracks the result.
func (m *MemoryManager) ToArrow(a Array) (arrow.Array, error) {
	arr, err := ToArrow(a)
	if err != nil {
		return nil, err
	}
	m.Track(arr)
	return arr, nil
}

// Count returns the number of tracked resources.
func (m *MemoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// ReleaseAll releases all tracked resources and clears the tracking list.
func (m *MemoryManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resource := range m.resources {
		resource.Release()
	}
	m.resources = m.resources[:0]
}

// WithArrow exports a, calls fn with the Arrow array and releases it
// afterwards. fn must not retain the array without calling Retain.
func WithArrow(a Array, fn func(arrow.Array) error) error {
	arr, err := ToArrow(a)
	if err != nil {
		return err
	}
	defer arr.Release()
	return fn(arr)
}

// WithMemoryManager creates a memory manager, executes fn with it and
// releases all tracked resources.
func WithMemoryManager(fn func(*MemoryManager) error) error {
	manager := NewMemoryManager()
	defer manager.ReleaseAll()
	return fn(manager)
}

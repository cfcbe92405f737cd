package services

import (
	"context"
	"fmt"
	"sync"
)

// MockPhotoStore is an in-memory PhotoStore for testing
type MockPhotoStore struct {
	objects map[string]bool
	deleted []string
	mu      sync.RWMutex
}

// NewMockPhotoStore creates a mock photo store holding the given keys
func NewMockPhotoStore(keys ...string) *MockPhotoStore {
	m := &MockPhotoStore{objects: make(map[string]bool)}
	for _, k := range keys {
		m.objects[k] = true
	}
	return m
}

// PresignURL returns a fake presigned URL for an existing key
func (m *MockPhotoStore) PresignURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("photo not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete removes key from the mock storage
func (m *MockPhotoStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

// Exists checks if key is present in mock storage
func (m *MockPhotoStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key]
}

// Deleted returns the keys removed so far
func (m *MockPhotoStore) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

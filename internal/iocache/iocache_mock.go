package iocache

import (
	"context"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetFindingStore implements the StoreManager interface.
func (m *MockStoreManager) GetFindingStore() contract.FindingStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.FindingStore)
	return store
}

// MockFindingStore is a mock implementation of FindingStore for testing.
// Expectations are registered without the context argument.
type MockFindingStore struct {
	mock.Mock
}

var _ contract.FindingStore = &MockFindingStore{} // Compile-time check

// Create implements the FindingStore interface.
func (m *MockFindingStore) Create(_ context.Context, f *schema.Finding) (int64, error) {
	args := m.Called(f)
	return args.Get(0).(int64), args.Error(1)
}

// Get implements the FindingStore interface.
func (m *MockFindingStore) Get(_ context.Context, id int64) (schema.Finding, error) {
	args := m.Called(id)
	return args.Get(0).(schema.Finding), args.Error(1)
}

// List implements the FindingStore interface.
func (m *MockFindingStore) List(_ context.Context) ([]schema.Finding, error) {
	args := m.Called()
	findings, _ := args.Get(0).([]schema.Finding)
	return findings, args.Error(1)
}

// Update implements the FindingStore interface.
func (m *MockFindingStore) Update(_ context.Context, id int64, update schema.TriageUpdate) error {
	args := m.Called(id, update)
	return args.Error(0)
}

// Exists implements the FindingStore interface.
func (m *MockFindingStore) Exists(_ context.Context, repoURL string, fixCommit string) (bool, error) {
	args := m.Called(repoURL, fixCommit)
	return args.Bool(0), args.Error(1)
}

// ShiftIDs implements the FindingStore interface.
func (m *MockFindingStore) ShiftIDs(_ context.Context, offset int64, from int64, to int64) ([]schema.KeyShift, error) {
	args := m.Called(offset, from, to)
	shifts, _ := args.Get(0).([]schema.KeyShift)
	return shifts, args.Error(1)
}

// GetStatus implements the FindingStore interface.
func (m *MockFindingStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the FindingStore interface.
func (m *MockFindingStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Package iocache is the persistence layer for triaged findings.
package iocache

import (
	"sync"

	"github.com/huangsam/xssbench/internal/contract"
)

// FindingStoreManager manages the FindingStore instance.
type FindingStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	findings     contract.FindingStore
}

var _ contract.StoreManager = &FindingStoreManager{} // Compile-time check

// GetFindingStore returns the findings store.
func (mgr *FindingStoreManager) GetFindingStore() contract.FindingStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.findings
}

// Package data provides thread-safe storage for the loaded medicine
// catalog. The DataContainer holds the current snapshot behind an atomic
// pointer so a scheduled refresh can swap it with zero downtime while
// queries keep reading the previous snapshot.
package data

import (
	"sync/atomic"
	"time"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/logging"
	"github.com/medisave/alternatives-api/medicines"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the catalog snapshot with atomic pointers for
// zero-downtime updates.
type DataContainer struct {
	catalog         atomic.Value // *medicines.Catalog
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with an empty catalog.
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.catalog.Store(&medicines.Catalog{
		GroupByComposition: make(map[string]int),
		RecordsByGroup:     make(map[int][]int),
	})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetCatalog returns the current catalog snapshot. Never nil.
func (dc *DataContainer) GetCatalog() *medicines.Catalog {
	if v := dc.catalog.Load(); v != nil {
		if catalog, ok := v.(*medicines.Catalog); ok {
			return catalog
		}
	}

	logging.Warn("Catalog snapshot is empty or invalid")
	return &medicines.Catalog{
		GroupByComposition: make(map[string]int),
		RecordsByGroup:     make(map[int][]int),
	}
}

// GetLastUpdated returns the timestamp of the last catalog load.
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a catalog refresh is currently in progress.
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time.
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateCatalog atomically replaces the catalog snapshot.
func (dc *DataContainer) UpdateCatalog(catalog *medicines.Catalog) {
	dc.catalog.Store(catalog)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a catalog refresh.
// Returns true if the refresh can proceed, false if another is in progress.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a catalog refresh.
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

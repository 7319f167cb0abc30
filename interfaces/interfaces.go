// Package interfaces defines core abstractions for the alternatives API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"time"

	"github.com/medisave/alternatives-api/medicines"
	"github.com/medisave/alternatives-api/medicines/entities"
)

// DataStore defines the contract for catalog storage. It provides
// thread-safe access to the loaded catalog snapshot with atomic operations
// for zero-downtime updates.
type DataStore interface {
	// Snapshot access
	GetCatalog() *medicines.Catalog
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Snapshot update
	UpdateCatalog(catalog *medicines.Catalog)
	SetServerStartTime(startTime time.Time)
	BeginUpdate() bool
	EndUpdate()
}

// DatasetLoader reads a medicine catalog from a tabular dataset file.
type DatasetLoader interface {
	Load(path string) (*medicines.Catalog, error)
}

// GroupPredictor classifies a normalized composition string into the
// external drug group label space.
type GroupPredictor interface {
	PredictGroup(composition string) (int, error)
}

// Matcher resolves a free-text query to the index of the reference record
// inside a catalog. Isolated so the substring policy can later be swapped
// for a search index without touching the engine's control flow.
type Matcher interface {
	Match(catalog *medicines.Catalog, query string) (int, bool)
}

// Recommender finds cheaper alternatives for a queried medicine name.
type Recommender interface {
	Recommend(query string, maxResults int) ([]entities.Alternative, error)
}

// QueryValidator validates user-supplied query strings.
type QueryValidator interface {
	ValidateQuery(input string) error
}

// Scheduler manages the periodic catalog refresh and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports system health from the current snapshot.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

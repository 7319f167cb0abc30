// Package scheduler provides automated catalog refresh scheduling and health
// monitoring for the alternatives API. It handles cron-based dataset reloads
// and coordinates refresh operations with the data container using dependency
// injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore   interfaces.DataStore
	loader      interfaces.DatasetLoader
	datasetPath string
	scheduler   *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.DatasetLoader, datasetPath string) *Scheduler {
	return &Scheduler{
		dataStore:   dataStore,
		loader:      loader,
		datasetPath: datasetPath,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial catalog load and schedules daily reloads.
// The initial load is synchronous; the server must not come up without a
// catalog.
func (s *Scheduler) Start() error {
	if err := s.reloadCatalog(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	// Reload daily at 06:00
	_, err := s.scheduler.Every(1).Days().At("06:00").Do(func() {
		if err := s.reloadCatalog(); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule catalog reloads", "error", err)
		return fmt.Errorf("failed to schedule catalog reloads: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reloadCatalog performs a complete catalog refresh using the injected loader
func (s *Scheduler) reloadCatalog() error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog reload at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	catalog, err := s.loader.Load(s.datasetPath)
	if err != nil {
		logging.Error("Failed to load catalog", "error", err, "path", s.datasetPath)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	// Readers keep the previous snapshot until this store completes
	s.dataStore.UpdateCatalog(catalog)

	elapsed := time.Since(start)
	logging.Info("Catalog reload completed",
		"duration", elapsed.String(),
		"medicine_count", len(catalog.Medicines),
		"group_count", len(catalog.RecordsByGroup),
	)

	return nil
}

// startHealthMonitoring monitors the freshness of the catalog snapshot
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours")
			}
		}
	}()
}

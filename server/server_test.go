package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medisave/alternatives-api/config"
	"github.com/medisave/alternatives-api/data"
	"github.com/medisave/alternatives-api/health"
	"github.com/medisave/alternatives-api/medicines"
	"github.com/medisave/alternatives-api/medicines/entities"
	"github.com/medisave/alternatives-api/validation"
)

type fakeRecommender struct{}

func (fakeRecommender) Recommend(query string, maxResults int) ([]entities.Alternative, error) {
	return []entities.Alternative{
		{Name: "Crocin 500mg Tablet", CleanComposition: "paracetamol 500mg", Price: entities.KnownPrice(8)},
	}, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:              "8000",
		Address:           "127.0.0.1",
		Env:               "test",
		MaxRequestBody:    1048576,
		MaxHeaderSize:     1048576,
		DefaultMaxResults: 10,
	}

	store := data.NewDataContainer()
	store.UpdateCatalog(&medicines.Catalog{
		Medicines: []entities.Medicine{
			{Name: "Paracetamol 500mg Tablet", CleanName: "paracetamol 500mg tablet"},
		},
		GroupByComposition: map[string]int{"paracetamol 500mg": 0},
		RecordsByGroup:     map[int][]int{0: {0}},
	})
	store.SetServerStartTime(time.Now())

	return NewServer(cfg, store, fakeRecommender{}, validation.NewQueryValidator(), health.NewHealthChecker(store))
}

func TestRoutes(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{"Alternatives", "/alternatives/paracetamol", http.StatusOK},
		{"Medicine search", "/medicines/paracetamol", http.StatusOK},
		{"Paged catalog", "/medicines/page/1", http.StatusOK},
		{"Group lookup", "/groups/0", http.StatusOK},
		{"Unknown group", "/groups/99", http.StatusNotFound},
		{"Health", "/health", http.StatusOK},
		{"Metrics", "/metrics", http.StatusOK},
		{"Unknown route", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("GET %s: expected %d, got %d (%s)", tt.path, tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medisave/alternatives-api/medicines"
	"github.com/medisave/alternatives-api/medicines/entities"
	"github.com/medisave/alternatives-api/recommend"
)

type fakeStore struct {
	catalog *medicines.Catalog
}

func (s *fakeStore) GetCatalog() *medicines.Catalog           { return s.catalog }
func (s *fakeStore) GetLastUpdated() time.Time                { return time.Now() }
func (s *fakeStore) IsUpdating() bool                         { return false }
func (s *fakeStore) GetServerStartTime() time.Time            { return time.Now() }
func (s *fakeStore) UpdateCatalog(catalog *medicines.Catalog) {}
func (s *fakeStore) SetServerStartTime(t time.Time)           {}
func (s *fakeStore) BeginUpdate() bool                        { return true }
func (s *fakeStore) EndUpdate()                               {}

type fakeRecommender struct {
	alternatives []entities.Alternative
	err          error
	gotQuery     string
	gotLimit     int
}

func (r *fakeRecommender) Recommend(query string, maxResults int) ([]entities.Alternative, error) {
	r.gotQuery = query
	r.gotLimit = maxResults
	if r.err != nil {
		return nil, r.err
	}
	return r.alternatives, nil
}

type fakeValidator struct {
	err error
}

func (v *fakeValidator) ValidateQuery(input string) error { return v.err }

func testCatalog() *medicines.Catalog {
	return &medicines.Catalog{
		Medicines: []entities.Medicine{
			{Name: "Paracetamol 500mg Tablet", CleanName: "paracetamol 500mg tablet", DrugGroup: 0},
			{Name: "Crocin 500mg Tablet", CleanName: "crocin 500mg tablet", DrugGroup: 0},
			{Name: "Azithral 500mg Tablet", CleanName: "azithral 500mg tablet", DrugGroup: 1},
		},
		GroupByComposition: map[string]int{"paracetamol 500mg": 0, "azithromycin 500mg": 1},
		RecordsByGroup:     map[int][]int{0: {0, 1}, 1: {2}},
	}
}

func doRequest(handler http.HandlerFunc, method, pattern, url string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(method, pattern, handler)

	req := httptest.NewRequest(method, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFindAlternativesSuccess(t *testing.T) {
	recommender := &fakeRecommender{
		alternatives: []entities.Alternative{
			{Name: "Crocin 500mg Tablet", CleanComposition: "paracetamol 500mg", Price: entities.KnownPrice(8)},
		},
	}
	handler := FindAlternatives(recommender, &fakeValidator{}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/paracetamol")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if recommender.gotQuery != "paracetamol" {
		t.Errorf("Expected query paracetamol, got %q", recommender.gotQuery)
	}
	if recommender.gotLimit != 10 {
		t.Errorf("Expected default limit 10, got %d", recommender.gotLimit)
	}

	var response AlternativesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Count != 1 || len(response.Alternatives) != 1 {
		t.Errorf("Expected 1 alternative, got %+v", response)
	}
	if response.Alternatives[0].Name != "Crocin 500mg Tablet" {
		t.Errorf("Unexpected alternative: %+v", response.Alternatives[0])
	}
}

func TestFindAlternativesLimitParam(t *testing.T) {
	recommender := &fakeRecommender{alternatives: []entities.Alternative{}}
	handler := FindAlternatives(recommender, &fakeValidator{}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/paracetamol?limit=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if recommender.gotLimit != 3 {
		t.Errorf("Expected limit 3, got %d", recommender.gotLimit)
	}

	rec = doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/paracetamol?limit=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-numeric limit, got %d", rec.Code)
	}
}

func TestFindAlternativesNotFound(t *testing.T) {
	handler := FindAlternatives(&fakeRecommender{err: recommend.ErrNotFound}, &fakeValidator{}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestFindAlternativesInvalidLimit(t *testing.T) {
	handler := FindAlternatives(&fakeRecommender{err: recommend.ErrInvalidLimit}, &fakeValidator{}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/paracetamol?limit=-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestFindAlternativesPredictionFailureDegrades(t *testing.T) {
	handler := FindAlternatives(&fakeRecommender{err: errors.New("scoring failed")}, &fakeValidator{}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/paracetamol")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected prediction failures to surface as 404, got %d", rec.Code)
	}
}

func TestFindAlternativesRejectsInvalidQuery(t *testing.T) {
	recommender := &fakeRecommender{}
	handler := FindAlternatives(recommender, &fakeValidator{err: errors.New("query too short")}, 10)

	rec := doRequest(handler, "GET", "/alternatives/{name}", "/alternatives/ab")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if recommender.gotQuery != "" {
		t.Error("Expected the recommender not to be called for an invalid query")
	}
}

func TestFindMedicines(t *testing.T) {
	store := &fakeStore{catalog: testCatalog()}
	handler := FindMedicines(store, &fakeValidator{})

	rec := doRequest(handler, "GET", "/medicines/{name}", "/medicines/500mg")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var results []entities.Medicine
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 matches for 500mg, got %d", len(results))
	}

	rec = doRequest(handler, "GET", "/medicines/{name}", "/medicines/ibuprofen")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for no matches, got %d", rec.Code)
	}
}

func TestFindGroup(t *testing.T) {
	store := &fakeStore{catalog: testCatalog()}
	handler := FindGroup(store)

	rec := doRequest(handler, "GET", "/groups/{groupId}", "/groups/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var results []entities.Medicine
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 medicines in group 0, got %d", len(results))
	}

	rec = doRequest(handler, "GET", "/groups/{groupId}", "/groups/99")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown group, got %d", rec.Code)
	}

	rec = doRequest(handler, "GET", "/groups/{groupId}", "/groups/abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-numeric group, got %d", rec.Code)
	}
}

func TestServePagedMedicines(t *testing.T) {
	store := &fakeStore{catalog: testCatalog()}
	handler := ServePagedMedicines(store)

	rec := doRequest(handler, "GET", "/medicines/page/{pageNumber}", "/medicines/page/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response struct {
		Data       []entities.Medicine `json:"data"`
		Page       int                 `json:"page"`
		TotalItems int                 `json:"totalItems"`
		MaxPage    int                 `json:"maxPage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Data) != 3 || response.TotalItems != 3 || response.MaxPage != 1 {
		t.Errorf("Unexpected page payload: %+v", response)
	}

	rec = doRequest(handler, "GET", "/medicines/page/{pageNumber}", "/medicines/page/2")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 past the last page, got %d", rec.Code)
	}

	rec = doRequest(handler, "GET", "/medicines/page/{pageNumber}", "/medicines/page/0")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for page 0, got %d", rec.Code)
	}
}

type fakeHealthChecker struct {
	status     string
	httpStatus int
}

func (h *fakeHealthChecker) HealthCheck() (string, map[string]any, int) {
	return h.status, map[string]any{"medicines": 3}, h.httpStatus
}

func (h *fakeHealthChecker) CalculateNextUpdate() time.Time { return time.Now() }

func TestHealthCheckHandler(t *testing.T) {
	handler := HealthCheck(&fakeHealthChecker{status: "healthy", httpStatus: http.StatusOK})

	rec := doRequest(handler, "GET", "/health", "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", response["status"])
	}

	handler = HealthCheck(&fakeHealthChecker{status: "unhealthy", httpStatus: http.StatusServiceUnavailable})
	rec = doRequest(handler, "GET", "/health", "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

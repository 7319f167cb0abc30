// Package recommend implements the alternative-medicine recommendation
// pipeline: resolve the queried name to a reference record, predict its
// composition group, then filter and rank same-group, same-dosage records
// by price.
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/medicines"
	"github.com/medisave/alternatives-api/medicines/entities"
	"github.com/medisave/alternatives-api/metrics"
)

// ErrNotFound signals that no record matched the query, or that the
// reference record has no alternatives. It is a normal result, not a
// failure.
var ErrNotFound = errors.New("no alternatives found")

// ErrInvalidLimit is returned when maxResults is zero or negative.
var ErrInvalidLimit = errors.New("max results must be positive")

// Compile-time check to ensure Engine implements Recommender
var _ interfaces.Recommender = (*Engine)(nil)

// Engine orchestrates matching, group prediction and candidate ranking
// over the store's current catalog snapshot. Queries are pure reads; the
// engine holds no per-query state.
type Engine struct {
	store     interfaces.DataStore
	predictor interfaces.GroupPredictor
	matcher   interfaces.Matcher
}

// NewEngine creates a recommendation engine with the default substring
// matcher.
func NewEngine(store interfaces.DataStore, predictor interfaces.GroupPredictor) *Engine {
	return NewEngineWithMatcher(store, predictor, NewSubstringMatcher())
}

// NewEngineWithMatcher creates a recommendation engine with a custom
// matcher.
func NewEngineWithMatcher(store interfaces.DataStore, predictor interfaces.GroupPredictor, matcher interfaces.Matcher) *Engine {
	return &Engine{
		store:     store,
		predictor: predictor,
		matcher:   matcher,
	}
}

// Recommend finds up to maxResults alternatives for the queried medicine
// name, cheapest first. Returns ErrNotFound when nothing matches the query
// or the reference has no alternatives, and ErrInvalidLimit when
// maxResults is not positive.
func (e *Engine) Recommend(query string, maxResults int) ([]entities.Alternative, error) {
	if maxResults <= 0 {
		return nil, ErrInvalidLimit
	}

	catalog := e.store.GetCatalog()

	key := medicines.NormalizeName(query)
	refIndex, found := e.matcher.Match(catalog, key)
	if !found {
		return nil, ErrNotFound
	}
	reference := catalog.Medicines[refIndex]

	start := time.Now()
	group, err := e.predictor.PredictGroup(reference.CleanComposition)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("group prediction for %q: %w", reference.CleanName, err)
	}

	candidates := e.collectCandidates(catalog, reference, group)
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	// Cheapest first; records with unknown price sort last. Stable so that
	// equal prices keep table order.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Price, candidates[j].Price
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value < b.Value
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// collectCandidates filters the catalog to records in the predicted group
// with a byte-identical dosage key, excluding the reference itself by clean
// name. The group index keeps this proportional to the group size rather
// than the whole table.
func (e *Engine) collectCandidates(catalog *medicines.Catalog, reference entities.Medicine, group int) []entities.Alternative {
	var candidates []entities.Alternative
	for _, index := range catalog.RecordsByGroup[group] {
		record := catalog.Medicines[index]
		if record.Dosage != reference.Dosage {
			continue
		}
		if record.CleanName == reference.CleanName {
			continue
		}
		candidates = append(candidates, entities.Alternative{
			Name:             record.Name,
			CleanComposition: record.CleanComposition,
			Price:            record.Price,
		})
	}
	return candidates
}

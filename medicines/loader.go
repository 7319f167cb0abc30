// Package medicines provides loading and normalization of the medicine
// catalog used by the recommendation engine. It reads the tabular dataset
// once, derives the normalized lookup columns and assigns each distinct
// composition an integer drug group.
package medicines

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medisave/alternatives-api/logging"
	"github.com/medisave/alternatives-api/medicines/entities"
)

// Columns the dataset file must carry. Extra columns are ignored.
var requiredColumns = []string{"name", "short_composition1", "short_composition2", "price"}

// LoadError is returned when the dataset cannot be loaded at all: the file
// is unreadable, unparseable, or missing a required column. It is fatal at
// startup; the process must not serve queries without a catalog.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset load failed for %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Catalog is the immutable working dataset built from one load. Records
// whose normalized composition is empty are excluded. Drug group ids are
// assigned per distinct clean composition in first-occurrence order, so
// they are deterministic for a given file but not guaranteed stable across
// files with different row order.
type Catalog struct {
	Medicines []entities.Medicine

	// GroupByComposition maps clean composition -> drug group id.
	GroupByComposition map[string]int

	// RecordsByGroup maps drug group id -> indexes into Medicines.
	RecordsByGroup map[int][]int
}

// Loader reads medicine catalogs from tabular files.
type Loader struct{}

// NewLoader creates a dataset loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the dataset at path and builds the working catalog.
func (l *Loader) Load(path string) (*Catalog, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("dataset contains no rows")}
	}

	// The header of the first row is representative for the whole table
	for _, column := range requiredColumns {
		if _, exists := rows[0][column]; !exists {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("missing required column %q", column)}
		}
	}

	catalog := &Catalog{
		Medicines:          make([]entities.Medicine, 0, len(rows)),
		GroupByComposition: make(map[string]int),
		RecordsByGroup:     make(map[int][]int),
	}

	skippedEmptyComposition := 0
	missingPrices := 0

	for _, row := range rows {
		composition := strings.TrimSpace(row["short_composition1"] + " " + row["short_composition2"])
		cleanComposition := NormalizeComposition(composition)

		// Records without any usable composition cannot be grouped and are
		// excluded from the working dataset entirely.
		if cleanComposition == "" {
			skippedEmptyComposition++
			continue
		}

		price, ok := parsePrice(row["price"])
		if !ok {
			missingPrices++
		}

		record := entities.Medicine{
			Name:              row["name"],
			ShortComposition1: row["short_composition1"],
			ShortComposition2: row["short_composition2"],
			Price:             price,
			CleanName:         NormalizeName(row["name"]),
			Composition:       composition,
			CleanComposition:  cleanComposition,
			Dosage:            ExtractDosage(row["name"]),
		}

		group, exists := catalog.GroupByComposition[cleanComposition]
		if !exists {
			group = len(catalog.GroupByComposition)
			catalog.GroupByComposition[cleanComposition] = group
		}
		record.DrugGroup = group

		catalog.RecordsByGroup[group] = append(catalog.RecordsByGroup[group], len(catalog.Medicines))
		catalog.Medicines = append(catalog.Medicines, record)
	}

	if len(catalog.Medicines) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no records with a usable composition")}
	}

	if skippedEmptyComposition > 0 || missingPrices > 0 {
		logging.Info("Dataset skip statistics",
			"empty_compositions", skippedEmptyComposition,
			"missing_prices", missingPrices,
			"total_rows", len(rows),
			"records_loaded", len(catalog.Medicines))
	}

	logging.Info("Dataset loaded",
		"records", len(catalog.Medicines),
		"drug_groups", len(catalog.GroupByComposition))

	return catalog, nil
}

// parsePrice coerces a raw price cell to a numeric price. Values that fail
// coercion become an explicit missing price, never zero and never an error:
// a single bad cell must not fail the load.
func parsePrice(raw string) (entities.Price, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entities.Price{}, false
	}

	// Some exports carry thousands separators; remove all commas but the
	// last, then treat a trailing comma as a decimal point.
	if numCommas := strings.Count(raw, ","); numCommas > 1 {
		raw = strings.Replace(raw, ",", "", numCommas-1)
	}
	raw = strings.ReplaceAll(raw, ",", ".")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return entities.Price{}, false
	}

	return entities.KnownPrice(value), true
}

// Package entities defines the data structures for the medicine catalog.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Price is a numeric price that may be missing. A missing price is
// serialized as JSON null, never as zero.
type Price struct {
	Value float64
	Valid bool
}

// KnownPrice returns a Price holding the given value.
func KnownPrice(v float64) Price {
	return Price{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Price{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid price value: %w", err)
	}
	*p = Price{Value: v, Valid: true}
	return nil
}

// String renders the price, or "unknown" when the value is missing.
func (p Price) String() string {
	if !p.Valid {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", p.Value)
}

// Medicine is one row of the loaded catalog. The Clean* fields, Dosage and
// DrugGroup are derived at load time; the rest comes from the source file.
type Medicine struct {
	Name              string `json:"name"`
	ShortComposition1 string `json:"short_composition1,omitempty"`
	ShortComposition2 string `json:"short_composition2,omitempty"`
	Price             Price  `json:"price"`
	CleanName         string `json:"clean_name"`
	Composition       string `json:"composition"`
	CleanComposition  string `json:"clean_composition"`
	Dosage            string `json:"dosage"`
	DrugGroup         int    `json:"drug_group"`
}

// Alternative is one recommended substitute for a queried medicine.
type Alternative struct {
	Name             string `json:"name"`
	CleanComposition string `json:"clean_composition"`
	Price            Price  `json:"price"`
}

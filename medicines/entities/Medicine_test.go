package entities

import (
	"encoding/json"
	"testing"
)

func TestPriceJSON(t *testing.T) {
	known, err := json.Marshal(KnownPrice(10.5))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(known) != "10.5" {
		t.Errorf("Expected 10.5, got %s", known)
	}

	missing, err := json.Marshal(Price{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(missing) != "null" {
		t.Errorf("Expected null for a missing price, got %s", missing)
	}

	var p Price
	if err := json.Unmarshal([]byte("null"), &p); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if p.Valid {
		t.Error("Expected null to decode as a missing price")
	}

	if err := json.Unmarshal([]byte("8"), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !p.Valid || p.Value != 8 {
		t.Errorf("Expected a known price of 8, got %+v", p)
	}

	if err := json.Unmarshal([]byte(`"free"`), &p); err == nil {
		t.Error("Expected an error for a non-numeric price")
	}
}

func TestPriceString(t *testing.T) {
	if got := KnownPrice(8).String(); got != "8.00" {
		t.Errorf("Expected 8.00, got %q", got)
	}
	if got := (Price{}).String(); got != "unknown" {
		t.Errorf("Expected unknown, got %q", got)
	}
}

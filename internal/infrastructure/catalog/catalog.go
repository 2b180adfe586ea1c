package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/boycottwatch/backend/internal/domain"
)

// Catalog holds the brand records behind an atomic pointer so a reload swaps
// the whole collection at once. Readers always see a consistent snapshot;
// individual records are never mutated in place.
type Catalog struct {
	records atomic.Value // []domain.BrandRecord
}

// New creates a catalog from an initial record set
func New(records []domain.BrandRecord) *Catalog {
	c := &Catalog{}
	c.Replace(records)
	return c
}

// Records returns the current snapshot of brand records
func (c *Catalog) Records() []domain.BrandRecord {
	return c.records.Load().([]domain.BrandRecord)
}

// Replace atomically swaps in a new record set
func (c *Catalog) Replace(records []domain.BrandRecord) {
	if records == nil {
		records = []domain.BrandRecord{}
	}
	c.records.Store(records)
}

// LoadFile reads a JSON array of brand records from disk and validates that
// every entry carries a name and a category.
func LoadFile(path string) ([]domain.BrandRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var records []domain.BrandRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for i, record := range records {
		if record.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has an empty brand name", i)
		}
		if record.Category == "" {
			return nil, fmt.Errorf("catalog entry %d (%s) has an empty category", i, record.Name)
		}
	}

	return records, nil
}

package categorize

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"warmpath/internal/match"
	"warmpath/internal/normalize"
	id "warmpath/pkg/domain"
)

//go:embed firms.json
var embeddedFirms []byte

// KnownFirm is one entry in the VC/PE reference list consulted by the rule
// chain. The list is read-only reference data.
type KnownFirm struct {
	Name    string      `json:"name"`
	Aliases []string    `json:"aliases"`
	Type    id.FirmType `json:"type"`
}

// FirmIndex resolves company names against the known-firm list: exact
// lookup on normalized name and aliases first, then the shared fuzzy
// first-token match as a fallback.
type FirmIndex struct {
	firms  []KnownFirm
	byName map[string]*KnownFirm
}

// NewFirmIndex builds an index over the given firms.
func NewFirmIndex(firms []KnownFirm) *FirmIndex {
	idx := &FirmIndex{
		firms:  firms,
		byName: make(map[string]*KnownFirm, len(firms)*2),
	}
	for i := range idx.firms {
		f := &idx.firms[i]
		if key := normalize.CompanyName(f.Name); key != "" {
			idx.byName[key] = f
		}
		for _, alias := range f.Aliases {
			if key := normalize.CompanyName(alias); key != "" {
				idx.byName[key] = f
			}
		}
	}
	return idx
}

// LoadKnownFirms returns the firm index, reading the override file when
// path is non-empty and the embedded list otherwise.
func LoadKnownFirms(path string) (*FirmIndex, error) {
	data := embeddedFirms
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read known firms %s: %w", path, err)
		}
	}
	var firms []KnownFirm
	if err := json.Unmarshal(data, &firms); err != nil {
		return nil, fmt.Errorf("parse known firms: %w", err)
	}
	return NewFirmIndex(firms), nil
}

// Lookup resolves a raw company name to a known firm, or nil.
func (idx *FirmIndex) Lookup(company string) *KnownFirm {
	key := normalize.CompanyName(company)
	if key == "" {
		return nil
	}
	if f, ok := idx.byName[key]; ok {
		return f
	}
	// Fuzzy fallback handles "Sequoia Capital Operations" style suffixed
	// employer strings.
	for i := range idx.firms {
		if match.FuzzyCompanyKey(company, idx.firms[i].Name) {
			return &idx.firms[i]
		}
	}
	return nil
}

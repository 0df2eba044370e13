// Package sampledata implements the optional sample_data wizard page: it
// imports a curated starter data set so a new deployment has something to
// look at before real records exist.
package sampledata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/seed.json
var defaultSeed []byte

//go:embed data/seed.schema.json
var seedSchema []byte

// Seed is the importable starter data set.
type Seed struct {
	Groups      []SeedGroup      `json:"groups"`
	Rooms       []SeedRoom       `json:"rooms"`
	ClosureDays []SeedClosureDay `json:"closure_days"`
}

// SeedGroup describes one starter group.
type SeedGroup struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	AgeMinMonths int    `json:"age_min_months"`
	AgeMaxMonths int    `json:"age_max_months"`
}

// SeedRoom describes one starter room, referencing a group by name.
type SeedRoom struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

// SeedClosureDay describes one starter closure date.
type SeedClosureDay struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// LoadSeed parses and schema-validates raw seed JSON.
func LoadSeed(raw []byte) (*Seed, error) {
	schema, err := compileSeedSchema()
	if err != nil {
		return nil, err
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("sampledata: parse seed: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("sampledata: seed rejected by schema: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("sampledata: decode seed: %w", err)
	}
	return &seed, nil
}

// DefaultSeed returns the embedded starter data set.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(defaultSeed)
}

func compileSeedSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("seed.schema.json", bytes.NewReader(seedSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("seed.schema.json")
}

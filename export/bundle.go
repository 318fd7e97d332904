package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sciknoworg/OntoLearner-sub000/hub"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// WriteBundle writes data as the three bundle JSON files under dir, creating
// dir if needed. Files are written one after another; a failure can leave a
// partial bundle behind.
func WriteBundle(dir string, data *ontology.Data) error {
	if data == nil {
		return fmt.Errorf("write bundle: nil data")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}

	typings := data.TermTypings
	if typings == nil {
		typings = []ontology.TermTyping{}
	}
	files := []struct {
		name  string
		value any
	}{
		{hub.TermTypingsFile, typings},
		{hub.TypeTaxonomiesFile, data.TypeTaxonomies},
		{hub.TypeNonTaxonomicRelationsFile, data.TypeNonTaxonomicRelations},
	}
	for _, f := range files {
		if err := WriteJSON(filepath.Join(dir, f.name), f.value); err != nil {
			return err
		}
	}
	return nil
}

// ReadBundle decodes the three bundle files under dir and validates the
// result. Any missing or malformed file is a LoadError.
func ReadBundle(dir string) (*ontology.Data, error) {
	var data ontology.Data
	targets := []struct {
		name  string
		value any
	}{
		{hub.TermTypingsFile, &data.TermTypings},
		{hub.TypeTaxonomiesFile, &data.TypeTaxonomies},
		{hub.TypeNonTaxonomicRelationsFile, &data.TypeNonTaxonomicRelations},
	}
	for _, t := range targets {
		p := filepath.Join(dir, t.name)
		if err := readJSON(p, t.value); err != nil {
			return nil, ontology.NewLoadError(p, err)
		}
	}

	if data.TermTypings == nil {
		data.TermTypings = []ontology.TermTyping{}
	}
	if data.TypeTaxonomies.Taxonomies == nil {
		data.TypeTaxonomies.Taxonomies = []ontology.TaxonomicRelation{}
	}
	if data.TypeNonTaxonomicRelations.NonTaxonomies == nil {
		data.TypeNonTaxonomicRelations.NonTaxonomies = []ontology.NonTaxonomicRelation{}
	}
	if err := data.Validate(); err != nil {
		return nil, ontology.NewLoadError(dir, err)
	}
	return &data, nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

package ontology

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTermTyping(t *testing.T) {
	tt, err := NewTermTyping("Merlot", "RedWine")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tt.ID, PrefixTermTyping))
	assert.Len(t, tt.ID, len(PrefixTermTyping)+8)
	assert.Equal(t, []string{"RedWine"}, tt.Types)

	_, err = NewTermTyping("Merlot")
	assert.ErrorIs(t, err, ErrInvalidEntity)

	_, err = NewTermTyping(" ", "RedWine")
	assert.ErrorIs(t, err, ErrInvalidEntity)

	_, err = NewTermTyping("Merlot", "")
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

func TestNewRelations(t *testing.T) {
	r, err := NewTaxonomicRelation("Red", "RedWine")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.ID, PrefixTaxonomic))

	_, err = NewTaxonomicRelation("", "RedWine")
	assert.ErrorIs(t, err, ErrInvalidEntity)

	n, err := NewNonTaxonomicRelation("Wine", "Winery", "hasMaker")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n.ID, PrefixNonTaxonomic))

	_, err = NewNonTaxonomicRelation("Wine", "Winery", "")
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

func TestTypeInventories(t *testing.T) {
	tax := NewTypeTaxonomies([]TaxonomicRelation{
		{ID: "TR_1", Parent: "Wine", Child: "RedWine"},
		{ID: "TR_2", Parent: "RedWine", Child: "Merlot"},
	})
	assert.Equal(t, []string{"Merlot", "RedWine", "Wine"}, tax.Types)
	require.NoError(t, tax.Validate())

	nt := NewNonTaxonomicRelations([]NonTaxonomicRelation{
		{ID: "NR_1", Head: "Wine", Tail: "Winery", Relation: "hasMaker"},
	}, "Region")
	assert.Equal(t, []string{"Region", "Wine", "Winery"}, nt.Types)
	assert.Equal(t, []string{"hasMaker"}, nt.Relations)
	require.NoError(t, nt.Validate())

	nt.Types = []string{"Wine"}
	assert.ErrorIs(t, nt.Validate(), ErrInvalidEntity)
}

func TestEmptyInventoriesSerializeAsArrays(t *testing.T) {
	data := Data{
		TermTypings:               []TermTyping{},
		TypeTaxonomies:            NewTypeTaxonomies(nil),
		TypeNonTaxonomicRelations: NewNonTaxonomicRelations(nil),
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"taxonomies":[]`)
	assert.Contains(t, string(raw), `"non_taxonomies":[]`)
	assert.True(t, data.IsEmpty())
}

func TestDataEqualIgnoresIDsAndOrder(t *testing.T) {
	a := &Data{
		TermTypings: []TermTyping{
			{ID: "TT_a", Term: "Merlot", Types: []string{"RedWine"}},
			{ID: "TT_b", Term: "Chablis", Types: []string{"WhiteWine"}},
		},
		TypeTaxonomies: NewTypeTaxonomies([]TaxonomicRelation{{ID: "TR_a", Parent: "Red", Child: "RedWine"}}),
	}
	b := &Data{
		TermTypings: []TermTyping{
			{ID: "TT_x", Term: "Chablis", Types: []string{"WhiteWine"}},
			{ID: "TT_y", Term: "Merlot", Types: []string{"RedWine"}},
		},
		TypeTaxonomies: NewTypeTaxonomies([]TaxonomicRelation{{ID: "TR_z", Parent: "Red", Child: "RedWine"}}),
	}
	assert.True(t, a.Equal(b))

	b.TermTypings[0].Types = []string{"RedWine"}
	assert.False(t, a.Equal(b))
	assert.Equal(t, []string{"Merlot", "Chablis"}, a.Terms())
}

func TestLoadErrorKinds(t *testing.T) {
	err := NewLoadError("wine.owl", assert.AnError)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, IsLoadError(err))
	assert.Contains(t, err.Error(), "wine.owl")

	ext := &ExtractionError{Extractor: "taxonomies", Err: assert.AnError}
	assert.ErrorIs(t, ext, ErrExtraction)
	assert.NotErrorIs(t, ext, ErrLoad)
}

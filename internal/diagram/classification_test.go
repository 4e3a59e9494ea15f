package diagram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassificationDomain_DecodeMissingSequences(t *testing.T) {
	var d ClassificationDomain
	require.NoError(t, json.Unmarshal([]byte(`{"domainId":3,"domainCode":30,"domainName":"Energy"}`), &d))
	require.Nil(t, d.Classes)

	view := NewNode(DomainNodeID(d.ID), d, StaticVisibility(true)).Render()
	require.Equal(t, NodeID("domain-3"), view.ID)
	require.Empty(t, view.Classes)
	require.Empty(t, view.Themes)
}

func TestClassificationDomain_Validate(t *testing.T) {
	d := ClassificationDomain{
		ID:      1,
		Classes: []IndustryClass{{ID: 1}, {ID: 2}},
		Themes:  []IndustryClass{{ID: 1}},
	}
	require.NoError(t, d.Validate(), "ids only need to be unique within one sequence")

	d.Themes = append(d.Themes, IndustryClass{ID: 1})
	require.ErrorIs(t, d.Validate(), ErrDuplicateClass)
}

package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/posm-recon/internal/model"
)

func TestRequirementIndex_DistinctCounts(t *testing.T) {
	ix := NewRequirementIndex([]model.POSMRequirement{
		{Model: "M1", POSMCode: "P1"},
		{Model: "M1", POSMCode: "P2"},
		{Model: "M1", POSMCode: "P2"}, // duplicate row
		{Model: "M2", POSMCode: "Q1"},
	})
	assert.Equal(t, 2, ix.RequiredCount("M1"))
	assert.Equal(t, 1, ix.RequiredCount("M2"))
	assert.Equal(t, 0, ix.RequiredCount("M3"))
	assert.Equal(t, 2, ix.Models())
}

func TestRequirementIndex_NormalizesModelKeys(t *testing.T) {
	ix := NewRequirementIndex([]model.POSMRequirement{
		{Model: "Model-X 55", POSMCode: "P1"},
		{Model: "modelx55", POSMCode: "P2"},
	})
	assert.Equal(t, 2, ix.RequiredCount("MODEL X.55"))
}

func TestRequirementIndex_SkipsMalformedRows(t *testing.T) {
	ix := NewRequirementIndex([]model.POSMRequirement{
		{Model: "", POSMCode: "P1"},
		{Model: "M1", POSMCode: ""},
		{Model: "M1", POSMCode: "P1"},
	})
	assert.Equal(t, 2, ix.Skipped())
	assert.Equal(t, 1, ix.RequiredCount("M1"))
}

func TestRequirementIndex_Codes(t *testing.T) {
	ix := NewRequirementIndex([]model.POSMRequirement{
		{Model: "M1", POSMCode: "P1"},
		{Model: "M1", POSMCode: "P2"},
	})
	codes := ix.Codes("M1")
	assert.True(t, codes["P1"])
	assert.True(t, codes["P2"])
	assert.Nil(t, ix.Codes("unknown"))
}

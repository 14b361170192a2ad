package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_ExactAfterStripping(t *testing.T) {
	m := NewMatcher(0.80)
	assert.True(t, m.Matches("Model-X 55", "modelx55"))
	assert.True(t, m.Matches("MODEL X.55", "Model X 55"))
}

func TestMatcher_Substring(t *testing.T) {
	m := NewMatcher(0.80)
	assert.True(t, m.Matches("ModelX55", "ModelX55 Pro"))
	assert.True(t, m.Matches("ModelX55 Pro", "ModelX55"))
}

func TestMatcher_JaccardOverLabels(t *testing.T) {
	m := NewMatcher(0.80)
	// Four of five tokens shared, reordered: stripped forms differ and
	// neither contains the other, so only the Jaccard tier can accept.
	assert.False(t, m.Matches("galaxy frame tv 55 qled", "frame tv 55 qled neo"))
	loose := NewMatcher(0.60)
	assert.True(t, loose.Matches("galaxy frame tv 55 qled", "frame tv 55 qled neo"))
}

func TestMatcher_RejectsUnrelated(t *testing.T) {
	m := NewMatcher(0.80)
	assert.False(t, m.Matches("ModelX55", "FridgeZ9"))
}

func TestMatcher_EmptyInputs(t *testing.T) {
	m := NewMatcher(0.80)
	assert.False(t, m.Matches("", "ModelX55"))
	assert.False(t, m.Matches("ModelX55", ""))
	assert.False(t, m.Matches("", ""))
}

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	names := []string{"tv__adstock", "search__adstock", "holiday"}
	labels, err := NewLabels(names)
	require.Nil(t, err)

	assert.Equal(t, 3, labels.Len())
	assert.Equal(t, names, labels.Names())

	idx, exists := labels.Index("holiday")
	assert.True(t, exists)
	assert.Equal(t, 2, idx)

	idx, exists = labels.Index("radio")
	assert.False(t, exists)
	assert.Equal(t, -1, idx)

	names[0] = "changed"
	assert.Equal(t, "tv__adstock", labels.Names()[0])

	var nilLabels *Labels
	assert.Equal(t, 0, nilLabels.Len())
	assert.Nil(t, nilLabels.Names())
	_, exists = nilLabels.Index("holiday")
	assert.False(t, exists)
}

func TestLabelsDuplicate(t *testing.T) {
	_, err := NewLabels([]string{"promo", "tv", "promo"})
	assert.ErrorIs(t, err, ErrDuplicateFeature)
}

package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReturnsFullCatalog(t *testing.T) {
	list := List()
	require.Len(t, list, 6)

	titles := make([]string, len(list))
	for i, c := range list {
		titles[i] = c.Title
		assert.NotEmpty(t, c.Description, c.Title)
		assert.NotEmpty(t, c.Symptoms, c.Title)
		assert.NotEmpty(t, c.Prevention, c.Title)
	}
	assert.Equal(t, []string{
		"Diabetes",
		"Hypertension (High Blood Pressure)",
		"Chronic Kidney Disease (CKD)",
		"Lung Cancer",
		"Pneumonia",
		"Skin Diseases",
	}, titles)
}

func TestListCopyIsIsolated(t *testing.T) {
	list := List()
	list[0].Title = "mutated"

	fresh := List()
	assert.Equal(t, "Diabetes", fresh[0].Title)
}

func TestGet(t *testing.T) {
	c, ok := Get("Pneumonia")
	require.True(t, ok)
	assert.Contains(t, c.Description, "air sacs")

	_, ok = Get("Unknown Condition")
	assert.False(t, ok)
}

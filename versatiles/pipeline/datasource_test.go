package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVRows(t *testing.T) {
	csv := "id,name\n1,alpha\n2,beta\n"
	rows, err := loadCSVRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0]["name"])
	assert.Equal(t, "2", rows[1]["id"])
}

func TestLoadCSVRowsEmptyFile(t *testing.T) {
	rows, err := loadCSVRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestBuildPropertiesMapIncludesID(t *testing.T) {
	rows := []map[string]string{{"id": "1", "name": "alpha"}}
	props, err := buildPropertiesMap(rows, "id", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": "1", "name": "alpha"}, props["1"])
}

func TestBuildPropertiesMapExcludesID(t *testing.T) {
	rows := []map[string]string{{"id": "1", "name": "alpha"}}
	props, err := buildPropertiesMap(rows, "id", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "alpha"}, props["1"])
}

func TestBuildPropertiesMapMissingKeyErrors(t *testing.T) {
	rows := []map[string]string{{"name": "alpha"}}
	_, err := buildPropertiesMap(rows, "id", false)
	assert.Error(t, err)
}

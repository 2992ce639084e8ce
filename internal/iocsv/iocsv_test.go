package iocsv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/internal/iocsv"
)

func TestParse(t *testing.T) {
	data := []byte(`Family,Genus,Species,Common Name
Araceae,Monstera,deliciosa,Swiss Cheese Plant
Moraceae,Ficus,lyrata,Fiddle Leaf Fig
`)

	headers, rows, err := iocsv.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Family", "Genus", "Species", "Common Name"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "Monstera", rows[0]["Genus"])
	assert.Equal(t, "Fiddle Leaf Fig", rows[1]["Common Name"])
}

func TestParseBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbfFamily,Genus\nAraceae,Monstera\n")
	headers, rows, err := iocsv.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Family", headers[0])
	require.Len(t, rows, 1)
}

func TestParseShortRow(t *testing.T) {
	// Missing trailing cells read as empty, not as an error.
	data := []byte("Family,Genus,Species\nAraceae,Monstera\n")
	_, rows, err := iocsv.Parse(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["Species"])
}

func TestParseSkipsBlankRows(t *testing.T) {
	data := []byte("Family,Genus\nAraceae,Monstera\n,,\n\nMoraceae,Ficus\n")
	_, rows, err := iocsv.Parse(data)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseQuotedCells(t *testing.T) {
	data := []byte("Family,Common Name\nAraceae,\"Monstera, the Swiss Cheese Plant\"\n")
	_, rows, err := iocsv.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Monstera, the Swiss Cheese Plant", rows[0]["Common Name"])
}

func TestParseStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty payload", data: ""},
		{name: "whitespace only", data: "  \n \n"},
		{name: "unbalanced quote", data: "Family,Genus\n\"Araceae,Monstera\nx,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := iocsv.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

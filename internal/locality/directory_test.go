package locality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlaces() []Place {
	return []Place{
		{Name: "Graus", Region: "Huesca", Area: "Ribagorza", Latitude: 42.19, Longitude: 0.34},
		{Name: "Granada", Region: "Granada", Area: "Vega de Granada", Latitude: 37.18, Longitude: -3.6},
		{Name: "Barbastro", Region: "Huesca", Area: "Somontano", Latitude: 42.03, Longitude: 0.13},
		{Name: "Benasque", Region: "Huesca", Area: "Ribagorza", Latitude: 42.6, Longitude: 0.52},
	}
}

func TestDirectory_Lookup(t *testing.T) {
	d := NewDirectory(testPlaces())

	p, ok := d.Lookup("graus")
	require.True(t, ok)
	assert.Equal(t, "Graus", p.Name)
	assert.Equal(t, "Ribagorza", p.Area)

	p, ok = d.Lookup("  GRAUS ")
	require.True(t, ok)
	assert.Equal(t, "Graus", p.Name)

	_, ok = d.Lookup("madrid")
	assert.False(t, ok)
}

func TestDirectory_SearchPrefix(t *testing.T) {
	d := NewDirectory(testPlaces())

	matches := d.Search("gra", 10)
	require.Len(t, matches, 2)
	assert.Equal(t, "Granada", matches[0].Name)
	assert.Equal(t, "Graus", matches[1].Name)

	matches = d.Search("b", 1)
	require.Len(t, matches, 1)
	assert.Equal(t, "Barbastro", matches[0].Name)

	assert.Empty(t, d.Search("", 10))
	assert.Empty(t, d.Search("zzz", 10))
}

func TestDirectory_IsDetachedFromInput(t *testing.T) {
	places := testPlaces()
	d := NewDirectory(places)
	places[0].Name = "mutated"

	_, ok := d.Lookup("graus")
	assert.True(t, ok)
	assert.Equal(t, 4, d.Len())
}

package locality

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Place is one normalized locality record from the external dataset.
type Place struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Area      string  `json:"area"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Directory is an immutable lookup over the locality dataset. It is built
// once at process start and passed by reference to its consumers; there is no
// ambient module-level state and no mutation after construction.
type Directory struct {
	places []Place
	keys   []string
	byKey  map[string]int
}

// Load reads the place dataset from a JSON file.
func Load(path string) ([]Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locality dataset: %w", err)
	}
	var places []Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("failed to parse locality dataset: %w", err)
	}
	return places, nil
}

// NewDirectory builds the index. The input slice is copied; callers cannot
// alter the directory afterwards. On duplicate names the first record wins.
func NewDirectory(places []Place) *Directory {
	d := &Directory{
		places: make([]Place, len(places)),
		byKey:  make(map[string]int, len(places)),
	}
	copy(d.places, places)
	sort.Slice(d.places, func(i, j int) bool {
		return normalize(d.places[i].Name) < normalize(d.places[j].Name)
	})

	d.keys = make([]string, len(d.places))
	for i, p := range d.places {
		key := normalize(p.Name)
		d.keys[i] = key
		if _, exists := d.byKey[key]; !exists {
			d.byKey[key] = i
		}
	}
	return d
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (d *Directory) Len() int {
	return len(d.places)
}

// Lookup resolves a locality name case-insensitively.
func (d *Directory) Lookup(name string) (Place, bool) {
	i, ok := d.byKey[normalize(name)]
	if !ok {
		return Place{}, false
	}
	return d.places[i], true
}

// Search returns up to limit places whose name starts with the given prefix,
// case-insensitively, in name order.
func (d *Directory) Search(prefix string, limit int) []Place {
	if limit <= 0 {
		limit = 10
	}
	key := normalize(prefix)
	if key == "" {
		return nil
	}

	start := sort.SearchStrings(d.keys, key)
	matches := make([]Place, 0, limit)
	for i := start; i < len(d.keys) && len(matches) < limit; i++ {
		if !strings.HasPrefix(d.keys[i], key) {
			break
		}
		matches = append(matches, d.places[i])
	}
	return matches
}

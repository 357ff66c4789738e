package huntdata

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Resolver supplies the canonical local game ids for human-readable names.
// Implementations must be pure lookups.
type Resolver interface {
	MobID(name string) (uint32, bool)
	TerritoryID(name string) (uint32, bool)
}

// SoftError records one dataset entry that could not be resolved. Soft errors
// never abort a load; the entry is skipped and the rest proceeds.
type SoftError struct {
	Patch Patch
	Kind  string // "mob" or "map"
	Name  string
}

func (e SoftError) Error() string {
	return fmt.Sprintf("%s: unknown %s name %q", e.Patch, e.Kind, e.Name)
}

type datasetMap struct {
	ID     uint32                  `yaml:"id"`
	Points map[string]datasetPoint `yaml:"points"`
}

type datasetPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type datasetPatch struct {
	Mobs map[string]uint32     `yaml:"mobs"`
	Maps map[string]datasetMap `yaml:"maps"`
}

// Load reads the hunt dataset at path and resolves every mob and map name
// through res. A missing or unparsable file, or an unknown patch key, is
// fatal. An unresolvable name only drops that entry and is returned as a
// SoftError so the caller can report the whole batch after the pass.
//
// When the same local id appears under more than one patch the last patch in
// release order wins; the dataset is not expected to do this.
func Load(path string, res Resolver) (*Tables, []SoftError, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var doc map[string]datasetPatch
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("hunt dataset: %w", err)
	}

	patches := make([]Patch, 0, len(doc))
	byPatch := make(map[Patch]datasetPatch, len(doc))
	for key, section := range doc {
		p, ok := ParsePatch(key)
		if !ok {
			return nil, nil, fmt.Errorf("hunt dataset: unknown patch %q", key)
		}
		patches = append(patches, p)
		byPatch[p] = section
	}
	sort.Slice(patches, func(i, j int) bool { return patches[i] < patches[j] })

	t := &Tables{
		Mobs:        MobLookup{},
		Territories: TerritoryLookup{},
	}
	var soft []SoftError

	for _, p := range patches {
		section := byPatch[p]

		for _, name := range sortedKeys(section.Mobs) {
			localID, ok := res.MobID(name)
			if !ok {
				soft = append(soft, SoftError{Patch: p, Kind: "mob", Name: name})
				continue
			}
			t.Mobs[localID] = MobEntry{Patch: p, TurtleID: section.Mobs[name]}
		}

		for _, name := range sortedKeys(section.Maps) {
			localID, ok := res.TerritoryID(name)
			if !ok {
				soft = append(soft, SoftError{Patch: p, Kind: "map", Name: name})
				continue
			}
			m := section.Maps[name]
			rec := TerritoryRecord{
				TurtleMapID: m.ID,
				SpawnPoints: make(map[string]Point, len(m.Points)),
			}
			for pointName, pt := range m.Points {
				rec.SpawnPoints[pointName] = Point{X: pt.X, Y: pt.Y}
			}
			t.Territories[localID] = rec
		}
	}

	return t, soft, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package gamedata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NameIndex resolves human-readable mob and territory names to their
// canonical local game ids. It backs the loader's Resolver capability with a
// file shipped alongside the bridge.
type NameIndex struct {
	mobs        map[string]uint32
	territories map[string]uint32
}

type nameFile struct {
	Mobs        map[string]uint32 `yaml:"mobs"`
	Territories map[string]uint32 `yaml:"territories"`
}

func Load(path string) (*NameIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f nameFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("name index: %w", err)
	}
	ix := &NameIndex{
		mobs:        f.Mobs,
		territories: f.Territories,
	}
	if ix.mobs == nil {
		ix.mobs = map[string]uint32{}
	}
	if ix.territories == nil {
		ix.territories = map[string]uint32{}
	}
	return ix, nil
}

func (ix *NameIndex) MobID(name string) (uint32, bool) {
	id, ok := ix.mobs[name]
	return id, ok
}

func (ix *NameIndex) TerritoryID(name string) (uint32, bool) {
	id, ok := ix.territories[name]
	return id, ok
}

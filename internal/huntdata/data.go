package huntdata

// Point is a 2D map coordinate in game units.
type Point struct {
	X float64
	Y float64
}

// MobEntry ties a local mob id to the id the tracker uses for it.
type MobEntry struct {
	Patch    Patch
	TurtleID uint32
}

// MobLookup maps local mob id -> tracker entry. Built once by Load and never
// mutated afterwards, so concurrent reads need no locking.
type MobLookup map[uint32]MobEntry

// TerritoryRecord holds the tracker-side data for one territory.
type TerritoryRecord struct {
	TurtleMapID uint32
	SpawnPoints map[string]Point
}

// TerritoryLookup maps local territory id -> tracker map data. Immutable
// after Load, same as MobLookup.
type TerritoryLookup map[uint32]TerritoryRecord

// Tables bundles both lookup tables produced by a single Load pass.
type Tables struct {
	Mobs        MobLookup
	Territories TerritoryLookup
}

// TrainMob is one live observation handed to us by the feed. The caller owns
// it; nothing here mutates it.
type TrainMob struct {
	MobID       uint32
	TerritoryID uint32
	Instance    int
	Position    Point
}

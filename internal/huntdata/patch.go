package huntdata

// Patch identifies a game content version. Values are ordered by release,
// so the newest patch among a set of mobs is simply the maximum.
type Patch int

const (
	PatchARealmReborn Patch = iota + 1
	PatchHeavensward
	PatchStormblood
	PatchShadowbringers
	PatchEndwalker
	PatchDawntrail
)

var patchNames = map[Patch]string{
	PatchARealmReborn:   "A Realm Reborn",
	PatchHeavensward:    "Heavensward",
	PatchStormblood:     "Stormblood",
	PatchShadowbringers: "Shadowbringers",
	PatchEndwalker:      "Endwalker",
	PatchDawntrail:      "Dawntrail",
}

func (p Patch) String() string {
	if name, ok := patchNames[p]; ok {
		return name
	}
	return "Unknown"
}

// ParsePatch maps a dataset key back to its Patch value.
func ParsePatch(name string) (Patch, bool) {
	for p, n := range patchNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

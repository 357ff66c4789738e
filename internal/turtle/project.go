package turtle

import "turtlescout.app/internal/huntdata"

// NormalizeInstance maps "no instance" (0 or absent) to instance 1; the
// remote service numbers every copy of a territory starting at 1.
func NormalizeInstance(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// filterSupported drops mobs the tracker does not know about. Unsupported
// mobs are excluded silently.
func filterSupported(train []huntdata.TrainMob, tables *huntdata.Tables) []huntdata.TrainMob {
	kept := make([]huntdata.TrainMob, 0, len(train))
	for _, mob := range train {
		if _, ok := tables.Mobs[mob.MobID]; ok {
			kept = append(kept, mob)
		}
	}
	return kept
}

// buildUpdateSightings projects a train onto the tracker's update shape:
// remote zone id, normalized instance, remote mob id, raw live position.
func buildUpdateSightings(train []huntdata.TrainMob, tables *huntdata.Tables) []updateSighting {
	supported := filterSupported(train, tables)
	sightings := make([]updateSighting, 0, len(supported))
	for _, mob := range supported {
		entry := tables.Mobs[mob.MobID]
		sightings = append(sightings, updateSighting{
			ZoneID:   tables.Territories[mob.TerritoryID].TurtleMapID,
			Instance: NormalizeInstance(mob.Instance),
			HuntID:   entry.TurtleID,
			Position: position{X: mob.Position.X, Y: mob.Position.Y},
		})
	}
	return sightings
}

// buildGenerateSightings projects a train onto the tracker's creation shape.
// Beyond mob support this also needs a known territory and a nearest spawn
// point; a mob missing either is dropped so the rest can still be sent. The
// returned patch is the highest across every mob that passed the support
// filter, including ones later dropped, and is zero when nothing passed.
func buildGenerateSightings(train []huntdata.TrainMob, tables *huntdata.Tables) ([]generateSighting, huntdata.Patch) {
	supported := filterSupported(train, tables)

	var highest huntdata.Patch
	sightings := make([]generateSighting, 0, len(supported))
	for _, mob := range supported {
		entry := tables.Mobs[mob.MobID]
		if entry.Patch > highest {
			highest = entry.Patch
		}
		rec, ok := tables.Territories[mob.TerritoryID]
		if !ok {
			continue
		}
		point, ok := huntdata.NearestSpawnPoint(rec.SpawnPoints, mob.Position)
		if !ok {
			continue
		}
		sightings = append(sightings, generateSighting{
			ZoneID:       rec.TurtleMapID,
			Instance:     NormalizeInstance(mob.Instance),
			SpawnPointID: point,
			HuntID:       entry.TurtleID,
		})
	}
	return sightings, highest
}

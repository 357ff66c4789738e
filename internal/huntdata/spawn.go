package huntdata

import "sort"

// NearestSpawnPoint returns the name of the spawn point closest to pos.
// Squared distances are enough for comparison so no square root is taken.
// Points are scanned in name order, so an exact tie resolves to the
// lexicographically smallest name. Linear in the number of points, which is
// tens per territory at most.
func NearestSpawnPoint(points map[string]Point, pos Point) (string, bool) {
	if len(points) == 0 {
		return "", false
	}

	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	var bestDist float64
	for i, name := range names {
		p := points[name]
		dx := p.X - pos.X
		dy := p.Y - pos.Y
		d := dx*dx + dy*dy
		if i == 0 || d < bestDist {
			best = name
			bestDist = d
		}
	}
	return best, true
}

// NearestSpawnPoint resolves the territory first; an unknown territory is a
// plain no-match, not an error.
func (t *Tables) NearestSpawnPoint(territoryID uint32, pos Point) (string, bool) {
	rec, ok := t.Territories[territoryID]
	if !ok {
		return "", false
	}
	return NearestSpawnPoint(rec.SpawnPoints, pos)
}

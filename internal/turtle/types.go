package turtle

import "turtlescout.app/internal/huntdata"

// Status is the caller-facing result of a train update.
type Status int

const (
	StatusSuccess Status = iota
	StatusNoSupportedMobs
	StatusHTTPError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoSupportedMobs:
		return "no_supported_mobs"
	case StatusHTTPError:
		return "http_error"
	}
	return "unknown"
}

// LinkData is the immutable result of generating a new remote train.
type LinkData struct {
	Slug                 string
	CollaboratorPassword string
	ReadonlyURL          string
	CollaborateURL       string
	HighestPatch         huntdata.Patch
}

// TagSource supplies the player's in-game tag. Implemented outside this
// package; a nil source simply means no tag is sent.
type TagSource interface {
	PlayerTag() string
}

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type updateSighting struct {
	ZoneID   uint32   `json:"zoneId"`
	Instance int      `json:"instance"`
	HuntID   uint32   `json:"huntId"`
	Position position `json:"position"`
}

type updateRequest struct {
	Password  string           `json:"password"`
	PlayerTag string           `json:"playerTag,omitempty"`
	Sightings []updateSighting `json:"sightings"`
}

type generateSighting struct {
	ZoneID       uint32 `json:"zoneId"`
	Instance     int    `json:"instance"`
	SpawnPointID string `json:"spawnPointId"`
	HuntID       uint32 `json:"huntId"`
}

type generateRequest struct {
	Sightings []generateSighting `json:"sightings"`
}

type generateResponse struct {
	Slug                 string `json:"slug"`
	CollaboratorPassword string `json:"collaboratorPassword"`
	ReadonlyURL          string `json:"readonlyUrl"`
	CollaborateURL       string `json:"collaborateUrl"`
}

package protocol

// HELLO (companion -> bridge)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerTag       string `json:"player_tag,omitempty"`
}

// TrainMobMsg is one live observation as carried on the wire. A missing
// instance means instance 1.
type TrainMobMsg struct {
	MobID       uint32  `json:"mob_id"`
	TerritoryID uint32  `json:"territory_id"`
	Instance    int     `json:"instance,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// TRAIN (companion -> bridge): push the current train to the joined session.
type TrainMsg struct {
	Type string        `json:"type"`
	Mobs []TrainMobMsg `json:"mobs"`
}

// JOIN (companion -> bridge)
type JoinMsg struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

// REJOIN / LEAVE carry no payload beyond the base message.

// GENERATE (companion -> bridge): create a new shareable train.
type GenerateMsg struct {
	Type       string        `json:"type"`
	Mobs       []TrainMobMsg `json:"mobs"`
	AllowEmpty bool          `json:"allow_empty,omitempty"`
}

// RESULT (bridge -> companion): outcome of the last command.
type ResultMsg struct {
	Type    string   `json:"type"`
	Op      string   `json:"op"`
	OK      bool     `json:"ok"`
	Status  string   `json:"status,omitempty"`
	Error   string   `json:"error,omitempty"`
	Session string   `json:"session,omitempty"`
	Link    *LinkMsg `json:"link,omitempty"`
}

type LinkMsg struct {
	Slug                 string `json:"slug"`
	CollaboratorPassword string `json:"collaborator_password"`
	ReadonlyURL          string `json:"readonly_url"`
	CollaborateURL       string `json:"collaborate_url"`
	HighestPatch         string `json:"highest_patch"`
}

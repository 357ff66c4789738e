package protocol

import "encoding/json"

const Version = "1.0"

// Message types exchanged with the game-client companion over the feed.
const (
	TypeHello    = "HELLO"
	TypeTrain    = "TRAIN"
	TypeJoin     = "JOIN"
	TypeRejoin   = "REJOIN"
	TypeLeave    = "LEAVE"
	TypeGenerate = "GENERATE"
	TypeResult   = "RESULT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

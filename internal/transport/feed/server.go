package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"turtlescout.app/internal/huntdata"
	"turtlescout.app/internal/protocol"
	"turtlescout.app/internal/turtle"
)

// Relay is the slice of the turtle client the feed needs.
type Relay interface {
	SendUpdate(ctx context.Context, train []huntdata.TrainMob) turtle.Status
	GenerateLink(ctx context.Context, train []huntdata.TrainMob, allowEmpty bool) (turtle.LinkData, error)
}

// Report summarizes one handled command for the sync log.
type Report struct {
	Op      string
	Session string
	Mobs    int
	OK      bool
	Detail  string
}

// TagHolder carries the player tag announced in HELLO. Implements
// turtle.TagSource.
type TagHolder struct {
	mu  sync.Mutex
	tag string
}

func (h *TagHolder) Set(tag string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tag = tag
}

func (h *TagHolder) PlayerTag() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tag
}

type Config struct {
	Session  *turtle.Session
	Relay    Relay
	Tags     *TagHolder
	Logger   *log.Logger
	OnLink   func(turtle.LinkData)
	OnReport func(Report)
}

// Server accepts one game-client companion over WebSocket and relays its
// train observations and session commands.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local companion only
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !s.handshake(conn) {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			s.route(r.Context(), conn, base.Type, msg)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return false
	}
	if s.cfg.Tags != nil && hello.PlayerTag != "" {
		s.cfg.Tags.Set(hello.PlayerTag)
	}
	s.printf("companion connected tag=%q", hello.PlayerTag)
	return true
}

func (s *Server) route(ctx context.Context, conn *websocket.Conn, msgType string, msg []byte) {
	switch msgType {
	case protocol.TypeTrain:
		var m protocol.TrainMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.handleTrain(ctx, conn, m)

	case protocol.TypeJoin:
		var m protocol.JoinMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		slug, _, ok := s.cfg.Session.Join(m.Link)
		if !ok {
			s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "join", Error: "invalid session link"})
			return
		}
		s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "join", OK: true, Session: slug})

	case protocol.TypeRejoin:
		slug, _, err := s.cfg.Session.Rejoin()
		if err != nil {
			s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "rejoin", Error: err.Error()})
			return
		}
		s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "rejoin", OK: true, Session: slug})

	case protocol.TypeLeave:
		s.cfg.Session.Leave()
		s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "leave", OK: true})

	case protocol.TypeGenerate:
		var m protocol.GenerateMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.handleGenerate(ctx, conn, m)
	}
}

func (s *Server) handleTrain(ctx context.Context, conn *websocket.Conn, m protocol.TrainMsg) {
	slug, _, active := s.cfg.Session.Credentials()
	if !active {
		s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "update", Error: "no active session"})
		return
	}
	train := toTrain(m.Mobs)
	status := s.cfg.Relay.SendUpdate(ctx, train)
	ok := status == turtle.StatusSuccess || status == turtle.StatusNoSupportedMobs
	s.report(Report{Op: "update", Session: slug, Mobs: len(train), OK: ok, Detail: status.String()})
	s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "update", OK: ok, Status: status.String(), Session: slug})
}

func (s *Server) handleGenerate(ctx context.Context, conn *websocket.Conn, m protocol.GenerateMsg) {
	train := toTrain(m.Mobs)
	link, err := s.cfg.Relay.GenerateLink(ctx, train, m.AllowEmpty)
	if err != nil {
		s.report(Report{Op: "generate", Mobs: len(train), Detail: err.Error()})
		s.reply(conn, protocol.ResultMsg{Type: protocol.TypeResult, Op: "generate", Error: err.Error()})
		return
	}
	s.report(Report{Op: "generate", Session: link.Slug, Mobs: len(train), OK: true})
	if s.cfg.OnLink != nil {
		s.cfg.OnLink(link)
	}
	s.reply(conn, protocol.ResultMsg{
		Type: protocol.TypeResult,
		Op:   "generate",
		OK:   true,
		Link: &protocol.LinkMsg{
			Slug:                 link.Slug,
			CollaboratorPassword: link.CollaboratorPassword,
			ReadonlyURL:          link.ReadonlyURL,
			CollaborateURL:       link.CollaborateURL,
			HighestPatch:         link.HighestPatch.String(),
		},
	})
}

func toTrain(mobs []protocol.TrainMobMsg) []huntdata.TrainMob {
	train := make([]huntdata.TrainMob, 0, len(mobs))
	for _, m := range mobs {
		train = append(train, huntdata.TrainMob{
			MobID:       m.MobID,
			TerritoryID: m.TerritoryID,
			Instance:    m.Instance,
			Position:    huntdata.Point{X: m.X, Y: m.Y},
		})
	}
	return train
}

func (s *Server) reply(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) report(r Report) {
	if s.cfg.OnReport != nil {
		s.cfg.OnReport(r)
	}
}

func (s *Server) printf(format string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Printf(format, args...)
	}
}

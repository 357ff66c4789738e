package turtle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"turtlescout.app/internal/huntdata"
)

// Outcome classifies one HTTP call. Every call resolves to exactly one.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeCanceled
	OutcomeTransport
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeTransport:
		return "transport"
	case OutcomeUnknown:
		return "unknown"
	}
	return "unknown"
}

// failureText carries one human-readable message per failure class so a
// timeout, a cancellation, a transport fault and everything else stay
// visually distinct in the log.
type failureText struct {
	timeout   string
	canceled  string
	transport string
	unknown   string
}

func (f failureText) message(o Outcome) string {
	switch o {
	case OutcomeTimeout:
		return f.timeout
	case OutcomeCanceled:
		return f.canceled
	case OutcomeTransport:
		return f.transport
	}
	return f.unknown
}

var updateFailures = failureText{
	timeout:   "Turtle update timed out",
	canceled:  "Turtle update was canceled",
	transport: "could not reach Turtle to update the train",
	unknown:   "unexpected error while updating the Turtle train",
}

var generateFailures = failureText{
	timeout:   "Turtle train generation timed out",
	canceled:  "Turtle train generation was canceled",
	transport: "could not reach Turtle to generate a train",
	unknown:   "unexpected error while generating a Turtle train",
}

type Config struct {
	BaseURL      string
	TrainPath    string
	Timeout      time.Duration
	DefaultPatch huntdata.Patch
	Tags         TagSource
	Logger       *log.Logger
}

// Client projects locally observed trains onto the remote tracker. The
// lookup tables are immutable, so one Client is safe for concurrent calls;
// session state carries its own lock.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tables     *huntdata.Tables
	session    *Session
}

func NewClient(cfg Config, tables *huntdata.Tables, session *Session) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.TrainPath = strings.Trim(strings.TrimSpace(cfg.TrainPath), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("empty turtle base url")
	}
	if cfg.TrainPath == "" {
		cfg.TrainPath = "api/v1/scout"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DefaultPatch == 0 {
		cfg.DefaultPatch = huntdata.PatchDawntrail
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tables:  tables,
		session: session,
	}, nil
}

// SendUpdate pushes the current train to the joined session. An empty
// supported set is reported as StatusNoSupportedMobs without touching the
// network. Never retries; the caller owns retry policy.
func (c *Client) SendUpdate(ctx context.Context, train []huntdata.TrainMob) Status {
	slug, password, active := c.session.Credentials()
	if !active {
		c.printf("train update requested without an active session")
		return StatusHTTPError
	}

	sightings := buildUpdateSightings(train, c.tables)
	if len(sightings) == 0 {
		return StatusNoSupportedMobs
	}

	body := updateRequest{
		Password:  password,
		PlayerTag: c.playerTag(),
		Sightings: sightings,
	}
	out := c.do(ctx, http.MethodPatch, c.cfg.TrainPath+"/"+slug, body, nil, updateFailures)
	if out != OutcomeSuccess {
		return StatusHTTPError
	}
	return StatusSuccess
}

// GenerateLink creates a brand-new shareable train from the current
// observations. With allowEmpty false an empty supported set fails before
// any network call; with allowEmpty true the empty train is created and
// tagged with the configured default patch.
func (c *Client) GenerateLink(ctx context.Context, train []huntdata.TrainMob, allowEmpty bool) (LinkData, error) {
	sightings, highest := buildGenerateSightings(train, c.tables)
	if len(sightings) == 0 && !allowEmpty {
		return LinkData{}, fmt.Errorf("none of the observed mobs are supported by Turtle")
	}
	if highest == 0 {
		highest = c.cfg.DefaultPatch
	}

	var resp generateResponse
	out := c.do(ctx, http.MethodPost, c.cfg.TrainPath, generateRequest{Sightings: sightings}, &resp, generateFailures)
	if out != OutcomeSuccess {
		return LinkData{}, fmt.Errorf("could not generate a Turtle train (%s)", out)
	}
	return LinkData{
		Slug:                 resp.Slug,
		CollaboratorPassword: resp.CollaboratorPassword,
		ReadonlyURL:          resp.ReadonlyURL,
		CollaborateURL:       resp.CollaborateURL,
		HighestPatch:         highest,
	}, nil
}

// do issues one request and classifies it. Response bodies are capped; a
// non-2xx status counts as a transport-class failure, an undecodable
// success body as unknown.
func (c *Client) do(ctx context.Context, method, path string, body any, into any, fails failureText) Outcome {
	reqID := uuid.NewString()

	buf, err := json.Marshal(body)
	if err != nil {
		c.printf("%s: %v request_id=%s", fails.unknown, err, reqID)
		return OutcomeUnknown
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+"/"+path, bytes.NewReader(buf))
	if err != nil {
		c.printf("%s: %v request_id=%s", fails.unknown, err, reqID)
		return OutcomeUnknown
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-request-id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		out := classify(err)
		c.printf("%s: %v request_id=%s", fails.message(out), err, reqID)
		return out
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.printf("%s: status=%d body=%s request_id=%s", fails.transport, resp.StatusCode, strings.TrimSpace(string(respBody)), reqID)
		return OutcomeTransport
	}
	if into != nil {
		if err := json.Unmarshal(respBody, into); err != nil {
			c.printf("%s: %v request_id=%s", fails.unknown, err, reqID)
			return OutcomeUnknown
		}
	}
	return OutcomeSuccess
}

func classify(err error) Outcome {
	switch {
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return OutcomeTimeout
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return OutcomeTransport
	}
	return OutcomeUnknown
}

func (c *Client) playerTag() string {
	if c.cfg.Tags == nil {
		return ""
	}
	return c.cfg.Tags.PlayerTag()
}

func (c *Client) printf(format string, args ...any) {
	if c != nil && c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}

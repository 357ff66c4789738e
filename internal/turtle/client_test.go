package turtle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"turtlescout.app/internal/huntdata"
)

type staticTag string

func (t staticTag) PlayerTag() string { return string(t) }

func newTestClient(t *testing.T, baseURL string, logBuf *bytes.Buffer) (*Client, *Session) {
	t.Helper()
	session := &Session{}
	c, err := NewClient(Config{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Tags:    staticTag("Hunter@Ice"),
		Logger:  log.New(logBuf, "", 0),
	}, testTables(), session)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, session
}

func TestSendUpdate_Success(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody updateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		if r.Header.Get("x-request-id") == "" {
			t.Errorf("missing x-request-id header")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	c, session := newTestClient(t, srv.URL, &logBuf)
	if _, _, ok := session.Join("/scout/room1/secret1"); !ok {
		t.Fatalf("join failed")
	}

	train := []huntdata.TrainMob{
		{MobID: 101, TerritoryID: 960, Position: huntdata.Point{X: 1, Y: 1}},
	}
	if got := c.SendUpdate(context.Background(), train); got != StatusSuccess {
		t.Fatalf("status = %v, want success", got)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("method = %s", gotMethod)
	}
	if gotPath != "/api/v1/scout/room1" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotBody.Password != "secret1" || gotBody.PlayerTag != "Hunter@Ice" {
		t.Fatalf("body = %+v", gotBody)
	}
	if len(gotBody.Sightings) != 1 {
		t.Fatalf("sightings = %d", len(gotBody.Sightings))
	}
}

func TestSendUpdate_NoSupportedMobsSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	c, session := newTestClient(t, srv.URL, &logBuf)
	session.Join("/scout/room1/secret1")

	train := []huntdata.TrainMob{{MobID: 900}, {MobID: 901}, {MobID: 902}}
	if got := c.SendUpdate(context.Background(), train); got != StatusNoSupportedMobs {
		t.Fatalf("status = %v, want no_supported_mobs", got)
	}
	if calls.Load() != 0 {
		t.Fatalf("server was called %d times", calls.Load())
	}
}

func TestSendUpdate_ServerErrorIsHTTPError(t *testing.T) {
	var gotReqID atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID.Store(r.Header.Get("x-request-id"))
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	c, session := newTestClient(t, srv.URL, &logBuf)
	session.Join("/scout/room1/secret1")

	train := []huntdata.TrainMob{{MobID: 101, TerritoryID: 960}}
	if got := c.SendUpdate(context.Background(), train); got != StatusHTTPError {
		t.Fatalf("status = %v, want http_error", got)
	}
	if !strings.Contains(logBuf.String(), updateFailures.transport) {
		t.Fatalf("log missing transport message: %q", logBuf.String())
	}
	reqID, _ := gotReqID.Load().(string)
	if reqID == "" {
		t.Fatal("server saw no x-request-id header")
	}
	if !strings.Contains(logBuf.String(), "request_id="+reqID) {
		t.Fatalf("log missing request id %q: %q", reqID, logBuf.String())
	}
}

func TestDo_OutcomeClassification(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Drain the body so the client's timeout-disconnect is seen
			// and the request context gets canceled.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		var logBuf bytes.Buffer
		session := &Session{}
		c, err := NewClient(Config{
			BaseURL: srv.URL,
			Timeout: 50 * time.Millisecond,
			Logger:  log.New(&logBuf, "", 0),
		}, testTables(), session)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		out := c.do(context.Background(), http.MethodPost, "api/v1/scout", generateRequest{}, nil, generateFailures)
		if out != OutcomeTimeout {
			t.Fatalf("outcome = %v, want timeout", out)
		}
		if !strings.Contains(logBuf.String(), generateFailures.timeout) {
			t.Fatalf("log missing timeout message: %q", logBuf.String())
		}
	})

	t.Run("canceled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		var logBuf bytes.Buffer
		c, _ := newTestClient(t, srv.URL, &logBuf)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out := c.do(ctx, http.MethodPost, "api/v1/scout", generateRequest{}, nil, generateFailures)
		if out != OutcomeCanceled {
			t.Fatalf("outcome = %v, want canceled", out)
		}
		if !strings.Contains(logBuf.String(), generateFailures.canceled) {
			t.Fatalf("log missing canceled message: %q", logBuf.String())
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		var logBuf bytes.Buffer
		c, _ := newTestClient(t, srv.URL, &logBuf)
		out := c.do(context.Background(), http.MethodPost, "api/v1/scout", generateRequest{}, nil, generateFailures)
		if out != OutcomeTransport {
			t.Fatalf("outcome = %v, want transport", out)
		}
		if !strings.Contains(logBuf.String(), generateFailures.transport) {
			t.Fatalf("log missing transport message: %q", logBuf.String())
		}
	})

	t.Run("undecodable success body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		var logBuf bytes.Buffer
		c, _ := newTestClient(t, srv.URL, &logBuf)
		var resp generateResponse
		out := c.do(context.Background(), http.MethodPost, "api/v1/scout", generateRequest{}, &resp, generateFailures)
		if out != OutcomeUnknown {
			t.Fatalf("outcome = %v, want unknown", out)
		}
		if !strings.Contains(logBuf.String(), generateFailures.unknown) {
			t.Fatalf("log missing unknown message: %q", logBuf.String())
		}
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"canceled", context.Canceled, OutcomeCanceled},
		{"deadline", context.DeadlineExceeded, OutcomeTimeout},
		{"wrapped canceled", &url.Error{Op: "Patch", Err: context.Canceled}, OutcomeCanceled},
		{"transport", &url.Error{Op: "Post", Err: errors.New("connection refused")}, OutcomeTransport},
		{"unclassified", errors.New("weird"), OutcomeUnknown},
	}
	for _, tc := range cases {
		if got := classify(tc.err); got != tc.want {
			t.Errorf("%s: classify = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGenerateLink_Success(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_ = json.NewEncoder(w).Encode(generateResponse{
			Slug:                 "fresh1",
			CollaboratorPassword: "collab9",
			ReadonlyURL:          "https://turtle.example/scout/fresh1",
			CollaborateURL:       "https://turtle.example/scout/fresh1/collab9",
		})
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	c, _ := newTestClient(t, srv.URL, &logBuf)

	train := []huntdata.TrainMob{
		{MobID: 101, TerritoryID: 960, Position: huntdata.Point{X: 1, Y: 1}},
		{MobID: 201, TerritoryID: 777},
	}
	link, err := c.GenerateLink(context.Background(), train, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/scout" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if len(gotBody.Sightings) != 1 {
		t.Fatalf("sightings = %d", len(gotBody.Sightings))
	}
	if link.Slug != "fresh1" || link.CollaboratorPassword != "collab9" {
		t.Fatalf("link = %+v", link)
	}
	if link.HighestPatch != huntdata.PatchDawntrail {
		t.Fatalf("highest patch = %v", link.HighestPatch)
	}
}

func TestGenerateLink_EmptyTrain(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(generateResponse{Slug: "empty1"})
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	c, _ := newTestClient(t, srv.URL, &logBuf)

	if _, err := c.GenerateLink(context.Background(), nil, false); err == nil {
		t.Fatalf("expected domain error for empty train")
	}
	if calls.Load() != 0 {
		t.Fatalf("server called %d times before allowEmpty", calls.Load())
	}

	link, err := c.GenerateLink(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("allowEmpty generate: %v", err)
	}
	if link.HighestPatch != huntdata.PatchDawntrail {
		t.Fatalf("default patch = %v", link.HighestPatch)
	}
	if calls.Load() != 1 {
		t.Fatalf("server called %d times", calls.Load())
	}
}

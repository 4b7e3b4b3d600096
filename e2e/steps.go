package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/cucumber/godog"

	"herald/e2e/steps/notify"
	"herald/internal/eventlog"
	"herald/internal/ingest"
	"herald/internal/ingest/handler"
	"herald/internal/notifier"
	"herald/internal/notifier/delivery/slacksink"
	"herald/internal/policy"
	httptransport "herald/internal/transport/http"
	"herald/internal/unitofwork"
)

// TestContext runs the whole service in process against a fake chat API.
type TestContext struct {
	directives map[string]string
	host       string

	chat   *httptest.Server
	mu     sync.Mutex
	posted []notify.Posted

	server       *httptest.Server
	lastStatus   int
	lastResponse []byte
}

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, err
	})

	notify.RegisterSteps(ctx, tc)
}

func (tc *TestContext) reset() {
	tc.directives = map[string]string{
		policy.EnvToken:   "xoxb-e2e",
		policy.EnvChannel: "#identity-alerts",
	}
	tc.host = "https://sso.example.com"
	tc.posted = nil
	tc.lastStatus = 0
	tc.lastResponse = nil
	tc.chat = httptest.NewServer(http.HandlerFunc(tc.fakeChat))
}

func (tc *TestContext) close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
	if tc.chat != nil {
		tc.chat.Close()
		tc.chat = nil
	}
}

func (tc *TestContext) fakeChat(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var blocks []json.RawMessage
	_ = json.Unmarshal([]byte(r.PostForm.Get("blocks")), &blocks)

	tc.mu.Lock()
	tc.posted = append(tc.posted, notify.Posted{
		Channel: r.PostForm.Get("channel"),
		Title:   r.PostForm.Get("text"),
		Blocks:  len(blocks),
	})
	tc.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1.0"}`))
}

// SetDirective records an environment directive for the next start.
func (tc *TestContext) SetDirective(name, value string) {
	tc.directives[name] = value
}

// Start resolves the policy and serves the ingest API.
func (tc *TestContext) Start() error {
	logger := slog.New(slog.DiscardHandler)
	pol := policy.Resolve(policy.MapLookup(tc.directives))
	sink := slacksink.New(slacksink.WithAPIURL(tc.chat.URL + "/api/"))
	factory := notifier.NewFactory(pol, sink, notifier.WithLogger(logger))
	store := eventlog.NewInMemoryStore()
	processor := ingest.NewProcessor(unitofwork.NewMemoryRunner(logger), store, factory,
		ingest.WithDefaultHost(tc.host),
		ingest.WithLogger(logger),
	)
	tc.server = httptest.NewServer(httptransport.NewRouter(httptransport.RouterConfig{
		Ingest: handler.New(processor, store, logger),
		Logger: logger,
	}))
	return nil
}

// POST sends body to path on the running service.
func (tc *TestContext) POST(path string, body string) error {
	if tc.server == nil {
		if err := tc.Start(); err != nil {
			return err
		}
	}
	resp, err := http.Post(tc.server.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastResponse, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

func (tc *TestContext) LastResponse() []byte { return tc.lastResponse }

func (tc *TestContext) Host() string { return tc.host }

// Posted returns what the fake chat API received, in order.
func (tc *TestContext) Posted() []notify.Posted {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]notify.Posted(nil), tc.posted...)
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// Posted is one message as seen by the chat API.
type Posted struct {
	Channel string
	Title   string
	Blocks  int
}

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	SetDirective(name, value string)
	POST(path string, body string) error
	LastStatus() int
	LastResponse() []byte
	Host() string
	Posted() []Posted
}

// RegisterSteps registers notification step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &notifySteps{tc: tc}

	ctx.Step(`^the directive "([^"]*)" is "([^"]*)"$`, steps.setDirective)
	ctx.Step(`^the notification directives:$`, steps.setDirectives)

	ctx.Step(`^the platform publishes the batch:$`, steps.publishBatch)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.responseFieldShouldBe)
	ctx.Step(`^the chat channel should receive (\d+) messages?$`, steps.channelShouldReceive)
	ctx.Step(`^message (\d+) should be an? (event|admin event) notification$`, steps.messageShouldBeKind)
	ctx.Step(`^message (\d+) should have (\d+) blocks$`, steps.messageShouldHaveBlocks)
	ctx.Step(`^message (\d+) should be posted to "([^"]*)"$`, steps.messageShouldBePostedTo)
}

type notifySteps struct {
	tc TestContext
}

func (s *notifySteps) setDirective(_ context.Context, name, value string) error {
	s.tc.SetDirective(name, value)
	return nil
}

func (s *notifySteps) setDirectives(_ context.Context, table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("directive row %d needs a name and a value", i)
		}
		s.tc.SetDirective(row.Cells[0].Value, row.Cells[1].Value)
	}
	return nil
}

func (s *notifySteps) publishBatch(_ context.Context, body *godog.DocString) error {
	return s.tc.POST("/v1/events", body.Content)
}

func (s *notifySteps) responseStatusShouldBe(_ context.Context, status int) error {
	if got := s.tc.LastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.LastResponse())
	}
	return nil
}

func (s *notifySteps) responseFieldShouldBe(_ context.Context, field string, want int) error {
	var body map[string]any
	if err := json.Unmarshal(s.tc.LastResponse(), &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	got, ok := body[field].(float64)
	if !ok {
		return fmt.Errorf("response has no numeric field %q: %s", field, s.tc.LastResponse())
	}
	if int(got) != want {
		return fmt.Errorf("expected %s=%d, got %v", field, want, got)
	}
	return nil
}

func (s *notifySteps) channelShouldReceive(_ context.Context, n int) error {
	if got := len(s.tc.Posted()); got != n {
		return fmt.Errorf("expected %d messages, got %d", n, got)
	}
	return nil
}

func (s *notifySteps) message(n int) (Posted, error) {
	posted := s.tc.Posted()
	if n < 1 || n > len(posted) {
		return Posted{}, fmt.Errorf("no message %d; %d received", n, len(posted))
	}
	return posted[n-1], nil
}

func (s *notifySteps) messageShouldBeKind(_ context.Context, n int, kind string) error {
	msg, err := s.message(n)
	if err != nil {
		return err
	}
	want := "New event has just occurred in Keycloak at " + s.tc.Host()
	if kind == "admin event" {
		want = "New admin event has just occurred in Keycloak at " + s.tc.Host()
	}
	if msg.Title != want {
		return fmt.Errorf("message %d title: expected %q, got %q", n, want, msg.Title)
	}
	return nil
}

func (s *notifySteps) messageShouldHaveBlocks(_ context.Context, n, blocks int) error {
	msg, err := s.message(n)
	if err != nil {
		return err
	}
	if msg.Blocks != blocks {
		return fmt.Errorf("message %d: expected %d blocks, got %s", n, blocks, strconv.Itoa(msg.Blocks))
	}
	return nil
}

func (s *notifySteps) messageShouldBePostedTo(_ context.Context, n int, channel string) error {
	msg, err := s.message(n)
	if err != nil {
		return err
	}
	if msg.Channel != channel {
		return fmt.Errorf("message %d: expected channel %q, got %q", n, channel, msg.Channel)
	}
	return nil
}

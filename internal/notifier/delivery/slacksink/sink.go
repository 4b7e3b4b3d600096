// Package slacksink delivers rendered messages through the Slack Web API
// (chat.postMessage with Block Kit blocks).
package slacksink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"herald/internal/notifier/delivery"
	"herald/internal/notifier/message"
	"herald/pkg/platform/sentinel"
)

// Sink posts messages to Slack. A client is built per request because the
// token travels with the request.
type Sink struct {
	apiURL  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures the Sink.
type Option func(*Sink)

// WithAPIURL points the sink at a different Slack API base URL. Method names
// are appended to it, so a missing trailing "/" is added.
func WithAPIURL(url string) Option {
	return func(s *Sink) {
		if url != "" && !strings.HasSuffix(url, "/") {
			url += "/"
		}
		s.apiURL = url
	}
}

// WithRateLimit caps outbound posts per second. Slack allows roughly one
// message per second per channel; bursts up to perSecond are let through.
func WithRateLimit(perSecond int) Option {
	return func(s *Sink) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New creates a Slack sink.
func New(opts ...Option) *Sink {
	s := &Sink{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver posts req as a single chat message. Non-ok Slack answers become a
// *delivery.ResponseError; transport failures wrap sentinel.ErrUnavailable.
func (s *Sink) Deliver(ctx context.Context, req delivery.Request) error {
	if req.Token == "" {
		return fmt.Errorf("slack token is not configured: %w", sentinel.ErrMisconfigured)
	}
	if req.Channel == "" {
		return fmt.Errorf("slack channel is not configured: %w", sentinel.ErrMisconfigured)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for slack rate limit: %w", err)
		}
	}

	var clientOpts []slack.Option
	if s.apiURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(s.apiURL))
	}
	client := slack.New(req.Token, clientOpts...)

	_, ts, err := client.PostMessageContext(ctx, req.Channel,
		slack.MsgOptionText(req.Title, false),
		slack.MsgOptionBlocks(Blocks(req.Segments)...),
	)
	if err != nil {
		var slackErr slack.SlackErrorResponse
		if errors.As(err, &slackErr) {
			return &delivery.ResponseError{Code: slackErr.Err}
		}
		return fmt.Errorf("post slack message: %w: %w", sentinel.ErrUnavailable, err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "slack message posted",
			"channel", req.Channel,
			"ts", ts,
		)
	}
	return nil
}

// Blocks maps message segments onto Slack layout blocks: headers and field
// pairs become section blocks, representations become context blocks.
func Blocks(segments []message.Segment) []slack.Block {
	blocks := make([]slack.Block, 0, len(segments))
	for _, seg := range segments {
		switch seg.Type {
		case message.SegmentFields:
			fields := make([]*slack.TextBlockObject, 0, len(seg.Fields))
			for _, f := range seg.Fields {
				fields = append(fields, markdown(f.Markdown()))
			}
			blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
		case message.SegmentRepresentation:
			blocks = append(blocks, slack.NewContextBlock("", markdown(seg.Text)))
		default:
			blocks = append(blocks, slack.NewSectionBlock(markdown(seg.Text), nil, nil))
		}
	}
	return blocks
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

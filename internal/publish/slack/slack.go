// Package slack implements the publish Adapter for Slack using the Web API.
package slack

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/drillplan/internal/publish"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// maxHeaderLen is Slack's limit for header block text.
	maxHeaderLen = 150
	// maxSectionLen is Slack's limit for section block text.
	maxSectionLen = 3000
	// maxBlocks is Slack's limit for blocks per message.
	maxBlocks = 50
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter implements publish.Adapter for Slack.
type Adapter struct {
	client    slackClient
	channelID string // default channel for messages without explicit channel
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	a := &Adapter{client: opts.Client, channelID: opts.ChannelID}
	if a.client == nil {
		a.client = slackapi.New(opts.BotToken)
	}
	return a, nil
}

// Name returns "slack".
func (a *Adapter) Name() string { return "slack" }

// Send posts the schedule as a Block Kit message.
func (a *Adapter) Send(ctx context.Context, msg publish.Message) error {
	channelID := msg.ChannelID
	if channelID == "" {
		channelID = a.channelID
	}
	if channelID == "" {
		return fmt.Errorf("slack: no channel specified")
	}

	options := []slackapi.MsgOption{
		slackapi.MsgOptionText(msg.Text, false),
		slackapi.MsgOptionBlocks(buildBlocks(msg)...),
	}
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := a.client.PostMessageContext(ctx, channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// Close is a no-op; the Web API client holds no connection.
func (a *Adapter) Close() error { return nil }

// buildBlocks renders a header, an optional shortfall notice and one section
// per training session.
func buildBlocks(msg publish.Message) []slackapi.Block {
	blocks := []slackapi.Block{
		slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(slackapi.PlainTextType, publish.Truncate(msg.Title, maxHeaderLen), false, false)),
	}
	if msg.Notice != "" {
		blocks = append(blocks, slackapi.NewContextBlock("",
			slackapi.NewTextBlockObject(slackapi.MarkdownType, ":warning: "+msg.Notice, false, false)))
	}
	for _, sec := range msg.Sections {
		if len(blocks)+2 > maxBlocks {
			break
		}
		blocks = append(blocks,
			slackapi.NewDividerBlock(),
			slackapi.NewSectionBlock(slackapi.NewTextBlockObject(slackapi.MarkdownType, sectionText(sec), false, false), nil, nil),
		)
	}
	return blocks
}

func sectionText(sec publish.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", escape(sec.Title))
	for _, f := range sec.Fields {
		fmt.Fprintf(&b, "\n\n*%s*\n%s", escape(f.Name), escape(f.Value))
	}
	return publish.Truncate(b.String(), maxSectionLen)
}

// escape replaces the characters Slack treats as control sequences in mrkdwn.
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// retryOnRateLimit calls fn and retries with exponential backoff on Slack
// rate limit errors. It respects context cancellation.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err // not a rate limit error, don't retry
		}

		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}

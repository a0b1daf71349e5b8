// Package discord implements the publish Adapter for Discord using the REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/drillplan/internal/publish"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// baseBackoff is the initial backoff for rate-limited calls.
	baseBackoff = 2 * time.Second
	// maxBackoff caps the exponential backoff.
	maxBackoff = 2 * time.Minute
	// maxEmbeds is Discord's limit for embeds per message.
	maxEmbeds = 10
	// maxFields is Discord's limit for fields per embed.
	maxFields = 25
	// maxTitleLen, maxFieldNameLen and maxFieldValueLen are Discord's embed text limits.
	maxTitleLen      = 256
	maxFieldNameLen  = 256
	maxFieldValueLen = 1024
	// maxContentLen is Discord's limit for message content.
	maxContentLen = 2000
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

// Adapter implements publish.Adapter for Discord.
type Adapter struct {
	sess        session
	channelID   string // default channel for messages
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// AdapterOpts holds parameters for creating a Discord Adapter.
type AdapterOpts struct {
	BotToken  string // Discord bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock session instead of real Discord API.
	Session session
}

// New creates a Discord Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}

	a := &Adapter{
		sess:        opts.Session,
		channelID:   opts.ChannelID,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}
	if a.sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		a.sess = dg
	}
	return a, nil
}

// Name returns "discord".
func (a *Adapter) Name() string { return "discord" }

// Send posts the schedule with one embed per session.
func (a *Adapter) Send(ctx context.Context, msg publish.Message) error {
	channelID := msg.ChannelID
	if channelID == "" {
		channelID = a.channelID
	}
	if channelID == "" {
		return fmt.Errorf("discord: no channel specified")
	}

	data := buildMessageSend(msg)
	err := a.retryOnRateLimit(ctx, func() error {
		_, sendErr := a.sess.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}

// Close closes the underlying session.
func (a *Adapter) Close() error {
	return a.sess.Close()
}

func buildMessageSend(msg publish.Message) *discordgo.MessageSend {
	content := "**" + msg.Title + "**"
	if msg.Notice != "" {
		content += "\n:warning: " + msg.Notice
	}
	data := &discordgo.MessageSend{
		Content: publish.Truncate(content, maxContentLen),
	}
	for i, sec := range msg.Sections {
		if i == maxEmbeds {
			log.Printf("discord: message has %d sessions, only the first %d are sent", len(msg.Sections), maxEmbeds)
			break
		}
		data.Embeds = append(data.Embeds, sectionToEmbed(sec))
	}
	return data
}

// sectionToEmbed converts a session Section to a Discord Embed.
func sectionToEmbed(sec publish.Section) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: publish.Truncate(sec.Title, maxTitleLen),
	}
	if sec.Color != "" {
		embed.Color = parseHexColor(sec.Color)
	}
	for i, f := range sec.Fields {
		if i == maxFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  publish.Truncate(f.Name, maxFieldNameLen),
			Value: publish.Truncate(f.Value, maxFieldValueLen),
		})
	}
	return embed
}

// parseHexColor converts a hex color string (e.g. "#36a64f") to an int.
func parseHexColor(hex string) int {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var color int
	for _, c := range hex {
		color <<= 4
		switch {
		case c >= '0' && c <= '9':
			color |= int(c - '0')
		case c >= 'a' && c <= 'f':
			color |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			color |= int(c-'A') + 10
		}
	}
	return color
}

// retryOnRateLimit calls fn and retries with exponential backoff on Discord
// rate limit errors. It respects context cancellation.
func (a *Adapter) retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var restErr *discordgo.RESTError
		if !errors.As(err, &restErr) || restErr.Response == nil || restErr.Response.StatusCode != http.StatusTooManyRequests {
			return err // not a rate limit error
		}

		if attempt == maxRetries {
			return err
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * a.baseBackoff
		if wait > a.maxBackoff {
			wait = a.maxBackoff
		}

		log.Printf("discord: rate limited (attempt %d/%d), retrying in %v",
			attempt+1, maxRetries, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}

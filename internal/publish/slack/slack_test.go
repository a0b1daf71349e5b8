package slack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/drillplan/internal/publish"
)

// --- Mock Slack client ---

type mockSlackClient struct {
	mu     sync.Mutex
	posted []postedMessage
	errs   []error // returned in order, one per call, before succeeding
	calls  int
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockSlackClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", "", err
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func testMessage() publish.Message {
	return publish.Message{
		Title:  "Training schedule hockey U12",
		Text:   "Training schedule for hockey U12: 2 sessions",
		Notice: "Only 2 drills available for hockey U12, fewer than the 5 requested per session.",
		Sections: []publish.Section{
			{Title: "Session 1", Fields: []publish.Field{
				{Name: "Session 1 - Drill 1", Value: "Dribbel <slalom> & pass\nDuration: 10 minutes"},
			}},
			{Title: "Session 2"},
		},
	}
}

func TestNew_RequiresBotToken(t *testing.T) {
	if _, err := New(AdapterOpts{}); err == nil {
		t.Fatal("expected error without bot token")
	}
	a, err := New(AdapterOpts{BotToken: "xoxb-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Name() != "slack" {
		t.Errorf("Name = %q", a.Name())
	}
}

func TestSend_DefaultChannel(t *testing.T) {
	client := &mockSlackClient{}
	a, _ := New(AdapterOpts{Client: client, ChannelID: "C_DEFAULT"})

	if err := a.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(client.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(client.posted))
	}
	if client.posted[0].channelID != "C_DEFAULT" {
		t.Errorf("channel = %q", client.posted[0].channelID)
	}
	if len(client.posted[0].options) != 2 {
		t.Errorf("options = %d, want text and blocks", len(client.posted[0].options))
	}
}

func TestSend_ExplicitChannel(t *testing.T) {
	client := &mockSlackClient{}
	a, _ := New(AdapterOpts{Client: client, ChannelID: "C_DEFAULT"})
	msg := testMessage()
	msg.ChannelID = "C1"
	if err := a.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if client.posted[0].channelID != "C1" {
		t.Errorf("channel = %q, want C1", client.posted[0].channelID)
	}
}

func TestSend_NoChannel(t *testing.T) {
	a, _ := New(AdapterOpts{Client: &mockSlackClient{}})
	if err := a.Send(context.Background(), testMessage()); err == nil {
		t.Fatal("expected error for no channel")
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	client := &mockSlackClient{errs: []error{&slackapi.RateLimitedError{RetryAfter: time.Millisecond}}}
	a, _ := New(AdapterOpts{Client: client, ChannelID: "C1"})
	if err := a.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestSend_OtherErrorsNotRetried(t *testing.T) {
	client := &mockSlackClient{errs: []error{errors.New("channel_not_found")}}
	a, _ := New(AdapterOpts{Client: client, ChannelID: "C1"})
	err := a.Send(context.Background(), testMessage())
	if err == nil || !strings.Contains(err.Error(), "slack: post message: channel_not_found") {
		t.Fatalf("err = %v", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
}

func TestRetryOnRateLimit_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryOnRateLimit(ctx, func() error {
		return &slackapi.RateLimitedError{RetryAfter: time.Hour}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildBlocks(t *testing.T) {
	blocks := buildBlocks(testMessage())
	// header, notice, then divider+section per session
	if len(blocks) != 6 {
		t.Fatalf("blocks = %d, want 6", len(blocks))
	}
	header, ok := blocks[0].(*slackapi.HeaderBlock)
	if !ok || header.Text.Text != "Training schedule hockey U12" {
		t.Errorf("header = %#v", blocks[0])
	}
	if _, ok := blocks[1].(*slackapi.ContextBlock); !ok {
		t.Errorf("blocks[1] = %T, want notice context block", blocks[1])
	}
	section, ok := blocks[3].(*slackapi.SectionBlock)
	if !ok {
		t.Fatalf("blocks[3] = %T, want section", blocks[3])
	}
	text := section.Text.Text
	for _, want := range []string{"*Session 1*", "*Session 1 - Drill 1*", "Dribbel &lt;slalom&gt; &amp; pass"} {
		if !strings.Contains(text, want) {
			t.Errorf("section text %q missing %q", text, want)
		}
	}
}

func TestBuildBlocks_NoNotice(t *testing.T) {
	msg := testMessage()
	msg.Notice = ""
	blocks := buildBlocks(msg)
	if len(blocks) != 5 {
		t.Errorf("blocks = %d, want 5", len(blocks))
	}
}

func TestBuildBlocks_CapsBlockCount(t *testing.T) {
	msg := publish.Message{Title: "many"}
	for i := 0; i < 40; i++ {
		msg.Sections = append(msg.Sections, publish.Section{Title: "s"})
	}
	if got := len(buildBlocks(msg)); got > maxBlocks {
		t.Errorf("blocks = %d, want at most %d", got, maxBlocks)
	}
}

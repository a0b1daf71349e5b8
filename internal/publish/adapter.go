// Package publish delivers generated schedules to chat platforms (Slack,
// Discord) on demand or on a cron schedule.
package publish

import "context"

// Adapter is the interface that platform-specific implementations must satisfy.
type Adapter interface {
	// Name identifies the platform in logs, e.g. "slack".
	Name() string

	// Send delivers a message to the platform.
	Send(ctx context.Context, msg Message) error

	// Close releases the platform connection.
	Close() error
}

// Message is a schedule formatted for chat.
type Message struct {
	ChannelID string    // target channel (empty uses the adapter default)
	Title     string    // headline
	Text      string    // plain-text summary, used as notification fallback
	Notice    string    // shortfall notice, empty when the schedule is complete
	Sections  []Section // one per training session
}

// Section is one training session within a Message.
type Section struct {
	Title  string  // session label
	Color  string  // sidebar color hint (e.g. "#36a64f")
	Fields []Field // one per drill
}

// Field is a key-value pair displayed in a section.
type Field struct {
	Name  string
	Value string
}

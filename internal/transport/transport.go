// Package transport defines the outbound messaging surface. The
// concrete chat platform client lives outside this module; everything
// here programs against the interface.
package transport

import "context"

// Sender delivers messages to a single recipient. Implementations are
// expected to be safe for concurrent use.
type Sender interface {
	// SendText delivers a plain text message to the given chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendAudio delivers an audio item identified by its durable
	// handle, with an optional caption.
	SendAudio(ctx context.Context, chatID int64, fileID, caption string) error
}

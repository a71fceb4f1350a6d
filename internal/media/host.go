// Package media abstracts the external host that stores audio bytes.
// Core code only ever holds opaque handles; the one exception is
// archive ingestion, which reads local files just long enough to
// validate and relay them.
package media

import (
	"context"
	"time"
)

// Relayed describes content accepted by the media host.
type Relayed struct {
	// DurableHandle is the stable reference to use from now on; the
	// submission handle it was obtained from may be ephemeral.
	DurableHandle string
	// Duration is the playback length as reported by the host. Zero
	// means the host could not determine it.
	Duration time.Duration
}

// Host relays possibly-ephemeral submissions to permanent storage.
// Failures are *domain.RelayError and recoverable per item.
type Host interface {
	// Relay re-hosts content already known to the messaging platform
	// by its submission handle.
	Relay(ctx context.Context, handle string) (Relayed, error)
	// RelayFile uploads a local file, e.g. an extracted archive entry.
	RelayFile(ctx context.Context, path, filename string) (Relayed, error)
}

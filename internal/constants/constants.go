// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "minbar.db"
	DefaultScratchDir  = "scratch"
	DefaultHTTPTimeout = 30 * time.Second
	MediaHTTPTimeout   = 5 * time.Minute
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second
)

// Content catalog
const (
	// MaxTrackPosition is the highest valid ordinal a track may occupy
	// within a performer's collection.
	MaxTrackPosition = 114

	SearchResultLimit   = 20
	DefaultPageSize     = 10
	DefaultHistoryLimit = 50
)

// Ingestion
const (
	// IngestBatchSize relayed items trigger a long pause so the media
	// host does not throttle us mid-batch.
	IngestBatchSize   = 30
	IngestBatchPause  = 60 * time.Second
	IngestItemDelay   = 2 * time.Second
	SuspectFileSize   = 10000 // bytes; smaller files are flagged
	ReportPreviewSize = 10
)

// Broadcast
const (
	BroadcastBatchSize  = 30
	BroadcastBatchPause = 60 * time.Second
	BroadcastSendDelay  = 50 * time.Millisecond
	BroadcastRetryLimit = 3
)

// File extensions accepted by archive ingestion
const (
	ExtMP3 = ".mp3"
	ExtM4A = ".m4a"
	ExtOGG = ".ogg"
)

// File permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"

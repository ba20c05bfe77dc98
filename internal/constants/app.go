package constants

import (
	"time"
)

// Application identity
const (
	// AppName is the short name used for config directories and notifications.
	AppName = "fac"

	// UserAgent is sent on every request to the carver server.
	UserAgent = "fac-agent"
)

// Job status polling
//
// The monitor gives the server a short head start after submission (the job
// record is created asynchronously), then polls on a fixed cadence until a
// terminal state is observed. A failed poll ends that monitor; automatic
// retries are off unless PollRetryMax is raised in config.
const (
	// DefaultInitialPollDelay - delay between submission and the first status poll
	DefaultInitialPollDelay = 800 * time.Millisecond

	// DefaultPollInterval - fixed delay between consecutive status polls
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultPollRetryMax - automatic retries of a failed status request
	DefaultPollRetryMax = 0
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (20 seconds)
	HTTPTLSHandshakeTimeout = 20 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (2 seconds)
	HTTPExpectContinueTimeout = 2 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPRequestTimeout - overall timeout for plain API calls (5 minutes)
	// Upload requests carry no overall timeout; they are bounded by context.
	HTTPRequestTimeout = 300 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// UI Updates
const (
	// ProgressUpdateInterval - interval for progress bar updates (250ms)
	ProgressUpdateInterval = 250 * time.Millisecond
)

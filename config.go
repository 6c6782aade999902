package ecsworld

import "github.com/sirupsen/logrus"

// Config holds global configuration for the ecsworld package.
var Config config = config{
	chunkCapacityIncrement: 64,
}

type config struct {
	// Logger, when non-nil, receives Debug-level structured log entries
	// for every structural World mutation (migrations, destroys, enable
	// cascades). Nil by default so the hot path costs nothing unless a
	// caller opts in.
	Logger *logrus.Logger

	// PanicOnPrecondition escalates precondition errors (NoSuchEntity,
	// ComponentAlreadyPresent, ...) to a panic instead of returning
	// them, for test harnesses that want fail-fast visibility.
	PanicOnPrecondition bool

	chunkCapacityIncrement int
}

// SetLogger configures the package-level debug logger.
func (c *config) SetLogger(l *logrus.Logger) {
	c.Logger = l
}

// SetPanicOnPrecondition toggles debug-build-style escalation of
// precondition errors to panics.
func (c *config) SetPanicOnPrecondition(v bool) {
	c.PanicOnPrecondition = v
}

// SetChunkCapacityIncrement sets the row-count granularity Chunk
// columns grow by when appending beyond capacity.
func (c *config) SetChunkCapacityIncrement(n int) {
	if n <= 0 {
		return
	}
	c.chunkCapacityIncrement = n
}


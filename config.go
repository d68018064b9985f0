// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "time"

// Config holds the immutable, process-wide configuration for a scan.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig]; the CLI layer sets the
// remaining fields once, before any subsystem is constructed, and nothing
// below mutates it afterwards.
type Config struct {
	// ErrClassifier classifies transport-level Go errors for structured
	// logging (timeouts, disconnects). Peer-originated D-Bus error replies
	// are classified separately by [ClassifyReply], which is not
	// configurable.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] used for structured logging.
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// Timeout bounds every bus call. Negative means no timeout.
	//
	// Set by [NewConfig] to 500ms, matching the spec's documented default.
	Timeout time.Duration

	// SessionBus selects the user session bus instead of the system bus.
	SessionBus bool

	// DumpMethods enables the method access-probe visitor.
	DumpMethods bool

	// DumpProperties enables the property access-probe visitor.
	DumpProperties bool

	// IncludeInvalid reports properties that could not be probed (the Set
	// call failed with a transport error, whatever the outcome of Get)
	// instead of silently dropping them.
	IncludeInvalid bool

	// EnableProbes actively sends malformed calls to classify reachability.
	// When false, every discovered method/property is reported reachable
	// without being called.
	EnableProbes bool

	// StrictInvalidBodies selects [CorrectArityInvalidBody] over the
	// default stopgap [StopgapInvalidBody] for constructing probe payloads.
	StrictInvalidBodies bool

	// NullAgentEnabled registers [NullAgent] for the scanning process itself.
	NullAgentEnabled bool

	// DumpActions enables the authority action enumerator.
	DumpActions bool

	// ActionFilter is the optional filter string for DumpActions, of the
	// form "key1=val1,key2=val2,...".
	ActionFilter string

	// PrintActions emits "AUTH <action-id>" for every authentication
	// request the agent receives, before replying.
	PrintActions bool

	// AuthPassword is the secret the null agent writes to the PolicyKit
	// agent helper to complete authentication. Empty means always cancel.
	AuthPassword string

	// MaxDepth caps the introspection walker's recursion as a safety net.
	// Exceeding it is a warning, not a fault. Zero means no cap.
	//
	// Set by [NewConfig] to 64.
	MaxDepth int

	// Name restricts the scan to a single bus name when non-empty.
	Name string
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: DefaultErrClassifier,
		Logger:        DefaultSLogger(),
		TimeNow:       time.Now,
		Timeout:       500 * time.Millisecond,
		MaxDepth:      64,
	}
}

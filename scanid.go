// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "github.com/google/uuid"

// NewScanID returns a UUIDv7 identifying one orchestrator run.
//
// Attach it to the logger with [*slog.Logger.With] so every log line
// produced by one scan correlates, the way a span ID correlates the stages
// of a single network measurement.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewScanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id.String()
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package busmap audits the local D-Bus ecosystem.
//
// # Core Abstraction
//
// Everything in this package is either a passive reader of bus-daemon state
// (name lists, owning processes, introspection XML) or an active prober that
// sends a single, deliberately invalid call to infer whether a method or
// property is access-controlled. The package never tries to actually
// authenticate as anyone; its [NullAgent] exists only to keep interactive
// PolicyKit prompts from blocking a scan.
//
// # Available Primitives
//
// Bus access:
//   - [BusClient]: synchronous call façade with bounded timeout and
//     structured logging (see [NewBusClient])
//   - [Resolver]: bus name to owning [ProcessRecord] (see [NewResolver])
//   - [ProtectProbe]: classifies whether a name is policy-protected
//
// Introspection:
//   - [Walker]: recursive, pre-order depth-first descent of a service's
//     object tree (see [NewWalker])
//   - [Visitor]: one callback per discovered node; [NewMethodProbeVisitor] and
//     [NewPropertyProbeVisitor] are the two built-in implementations
//
// Authorization:
//   - [ActionEnumerator]: lists and filters PolicyKit actions
//   - [NullAgent]: registers as the process's (or a child's) authentication
//     agent and cancels or completes incoming requests
//
// Orchestration:
//   - [Orchestrator]: sequences the above across every bus name and prints
//     one row per discovery
//
// # Composition utilities
//
// [Func], [FuncAdapter], [Compose2] through [Compose4], [Apply], and
// [ConstFunc] provide a small typed-pipeline vocabulary. The access probe
// uses them to stage "synthesize an invalid body" -> "call" -> "classify"
// as three independently testable units, the same way a composed dialer
// pipeline stages connect -> handshake -> round-trip.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled; set [Config.Logger] to a
// custom [*slog.Logger] to enable it. Error classification for transport
// failures is configurable via [Config.ErrClassifier]; peer-originated
// D-Bus error replies are classified separately by [ClassifyReply], which
// implements a fixed, non-configurable table, since it is the single
// source of truth for "reachable" vs. "access-controlled."
//
// Every scan is tagged with a scan ID (see [NewScanID]), logged as the
// scanId attribute of the scanStart and scanDone events that bracket one
// orchestrator run; the other log lines of the run do not carry it.
//
// # Concurrency
//
// [Orchestrator] itself is single-threaded: one bus call outstanding at a
// time, bounded by [Config.Timeout]. [NullAgent] shares the same
// connection as the orchestrator; incoming BeginAuthentication dispatches
// run on the connection's own read loop and touch no orchestrator state
// beyond the read-only [Config].
package busmap

// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "strings"

// Verdict is the outcome of classifying a peer's reply to a probe call,
// per §4.6's table.
type Verdict int

const (
	// VerdictReachable means the target is not access-controlled: the peer
	// either returned a method return, a recognized "I parsed this but
	// rejected the value" error, or an unrecognized error (fail open).
	VerdictReachable Verdict = iota

	// VerdictAccessControlled means the peer's error indicates a policy
	// gate rejected the call before it reached the target.
	VerdictAccessControlled
)

// knownReachableErrors are exact D-Bus error names that still indicate
// reachability: the peer parsed the message enough to reject its content,
// which is not the same as being access-controlled.
var knownReachableErrors = map[string]bool{
	"org.freedesktop.DBus.Error.InvalidArgs":       true,
	"org.freedesktop.DBus.Error.UnknownMethod":     true,
	"org.freedesktop.PolicyKit1.Error.NotAuthorized": true,
}

// knownReachableSuffixes are substrings of error names (Python-raised
// exceptions typically carry a module-qualified name) that still indicate
// reachability.
var knownReachableSuffixes = []string{
	"Python.TypeError",
	"Python.ValueError",
}

// knownAccessControlledNames are exact error names that mean a policy gate
// refused the call.
var knownAccessControlledNames = map[string]bool{
	"org.freedesktop.DBus.Error.AccessDenied":     true,
	"org.freedesktop.DBus.Error.PropertyReadOnly": true,
}

// knownAccessControlledSubstrings are substrings indicating policy denial,
// used when the error name is not an exact match above.
var knownAccessControlledSubstrings = []string{
	"PolKit.NotAuthorizedException",
	"authorization_2derror",
}

// knownReachableExact2 are substrings for DBusException-family errors,
// which carry a Python module prefix; like knownReachableSuffixes they are
// matched with strings.Contains. They are kept apart from that list because
// the table in §4.6 lists them as their own row.
var knownReachableExact2 = []string{
	"DBusException",
}

// ClassifyReply implements §4.6's fixed classification table. It is the
// single source of truth for reachability and deliberately not
// configurable: unknown errors always classify as [VerdictReachable], per
// the "fail open" policy in §7.
func ClassifyReply(logger SLogger, reply Reply) Verdict {
	if reply.Success() {
		return VerdictReachable
	}

	name := reply.ErrorName()

	if knownAccessControlledNames[name] {
		return VerdictAccessControlled
	}
	for _, substr := range knownAccessControlledSubstrings {
		if strings.Contains(name, substr) {
			return VerdictAccessControlled
		}
	}

	if knownReachableErrors[name] {
		return VerdictReachable
	}
	for _, substr := range knownReachableSuffixes {
		if strings.Contains(name, substr) {
			return VerdictReachable
		}
	}
	for _, substr := range knownReachableExact2 {
		if strings.Contains(name, substr) {
			return VerdictReachable
		}
	}

	if name == "NoReply" || name == "ServiceUnknown" {
		return VerdictReachable
	}

	if logger != nil {
		logger.Debug("classifyUnknownErrorName", "errorName", name)
	}
	return VerdictReachable
}

// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "github.com/godbus/dbus/v5"

// BusName is a printable bus identifier, either well-known (dot-delimited)
// or unique (daemon-assigned, prefixed with ':'). It is created by the bus
// daemon and is read-only to this package.
type BusName string

// IsUnique reports whether name is a daemon-assigned unique name.
func (n BusName) IsUnique() bool {
	return len(n) > 0 && n[0] == ':'
}

// String implements [fmt.Stringer].
func (n BusName) String() string {
	return string(n)
}

// ProcessRecord describes the OS process that owns a bus name.
//
// Created on demand by [Resolver]; its lifetime is the caller's iteration —
// there is no explicit destructor, Go's GC reclaims it once the orchestrator
// moves to the next bus name.
type ProcessRecord struct {
	PID                 int32
	EUser               string
	EGroup              string
	Cmdline             []string
	Environ             []string
	SupplementaryGroups []string
}

// AuthResult is one of the six PolicyKit implicit-authorization outcomes.
type AuthResult uint32

// The six implicit-authorization values, in the order the authority's wire
// format uses them.
const (
	AuthNotAuthorized                               AuthResult = 0
	AuthAuthenticationRequired                      AuthResult = 1
	AuthAdministratorAuthenticationRequired          AuthResult = 2
	AuthAuthenticationRequiredRetained               AuthResult = 3
	AuthAdministratorAuthenticationRequiredRetained  AuthResult = 4
	AuthAuthorized                                   AuthResult = 5
)

// ShortLabel returns the short label used for filter matching and output:
// "No", "Auth", "Admin", or "Yes".
func (r AuthResult) ShortLabel() string {
	switch r {
	case AuthNotAuthorized:
		return "No"
	case AuthAuthenticationRequired, AuthAuthenticationRequiredRetained:
		return "Auth"
	case AuthAdministratorAuthenticationRequired, AuthAdministratorAuthenticationRequiredRetained:
		return "Admin"
	case AuthAuthorized:
		return "Yes"
	default:
		return "?"
	}
}

// AuthorityAction is one action declared by the authority's EnumerateActions.
type AuthorityAction struct {
	ID          string
	Description string
	Message     string
	Vendor      string
	VendorURL   string
	Icon        string
	Any         AuthResult
	Inactive    AuthResult
	Active      AuthResult
}

// authorityActionWire is the exact wire shape of one EnumerateActions
// element: (s s s s s s u u u a{ss}).
type authorityActionWire struct {
	ID          string
	Description string
	Message     string
	Vendor      string
	VendorURL   string
	Icon        string
	Any         uint32
	Inactive    uint32
	Active      uint32
	Annotations map[string]string
}

func (w authorityActionWire) toAction() AuthorityAction {
	return AuthorityAction{
		ID:          w.ID,
		Description: w.Description,
		Message:     w.Message,
		Vendor:      w.Vendor,
		VendorURL:   w.VendorURL,
		Icon:        w.Icon,
		Any:         AuthResult(w.Any),
		Inactive:    AuthResult(w.Inactive),
		Active:      AuthResult(w.Active),
	}
}

// Identity is one entry of an AuthenticationRequest's identity list. The
// only discriminator this package interprets is "unix-user", whose Details
// map carries a "uid" key of type uint32.
type Identity struct {
	Kind    string
	Details map[string]dbus.Variant
}

// UnixUserUID returns the identity's uid if Kind is "unix-user".
func (id Identity) UnixUserUID() (uint32, bool) {
	if id.Kind != "unix-user" {
		return 0, false
	}
	v, ok := id.Details["uid"]
	if !ok {
		return 0, false
	}
	uid, ok := v.Value().(uint32)
	return uid, ok
}

// identityWire is the exact wire shape of one identity: (sa{sv}).
type identityWire struct {
	Kind    string
	Details map[string]dbus.Variant
}

// AuthenticationRequest is the payload of one BeginAuthentication call.
type AuthenticationRequest struct {
	ActionID   string
	Message    string
	IconName   string
	Details    map[string]string
	Cookie     string
	Identities []Identity
}

// HasUID reports whether any identity in the request is a unix-user with
// the given uid.
func (r AuthenticationRequest) HasUID(uid uint32) bool {
	for _, id := range r.Identities {
		if got, ok := id.UnixUserUID(); ok && got == uid {
			return true
		}
	}
	return false
}

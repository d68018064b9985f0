// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "github.com/godbus/dbus/v5/introspect"

// MethodInputSignature returns the wire signature of method's declared
// input arguments (direction != "out"), per §4.5. A method with no input
// arguments yields the empty string.
func MethodInputSignature(method introspect.Method) string {
	var sig string
	for _, arg := range method.Args {
		if arg.Direction == "out" {
			continue
		}
		sig += arg.Type
	}
	return sig
}

// PropertySignature returns prop's declared type, per §4.5.
func PropertySignature(prop introspect.Property) string {
	return prop.Type
}

// BodyBuilder constructs a deliberately invalid call body for a given
// signature, per §4.5: syntactically well-typed but semantically wrong, to
// provoke argument-validation errors rather than dispatch errors.
type BodyBuilder func(signature string) []any

// StopgapInvalidBody is spec.md §4.5's pragmatic policy: an empty or
// single-string signature gets a wrapped float (fails a string type check);
// anything else gets a wrapped non-matching string.
func StopgapInvalidBody(signature string) []any {
	if signature == "" || signature == "s" {
		return []any{float64(3.14159)}
	}
	return []any{"__busmap_invalid__"}
}

// CorrectArityInvalidBody is the "more principled" body builder §9's Open
// Questions section calls for: one wrong-typed leaf per declared argument,
// guaranteeing type-check failure regardless of arity, selected via
// [Config.StrictInvalidBodies].
//
// This walks the signature atom-by-atom rather than tokenizing containers,
// so a container argument (e.g. "a{ss}") contributes more leaves than the
// single argument it represents; the call still fails type-checking, which
// is the only property this builder promises.
func CorrectArityInvalidBody(signature string) []any {
	if signature == "" {
		return []any{float64(3.14159)}
	}
	body := make([]any, 0, len(signature))
	for _, r := range signature {
		body = append(body, invalidLeafFor(r))
	}
	return body
}

// invalidLeafFor returns a value guaranteed to mismatch the basic type atom
// atom (falling back to a string, which only matches a 's' atom).
func invalidLeafFor(atom rune) any {
	switch atom {
	case 's', 'o', 'g':
		return float64(3.14159)
	default:
		return "__busmap_invalid__"
	}
}

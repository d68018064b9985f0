// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	policyKitBusName = "org.freedesktop.PolicyKit1"
	policyKitPath    = "/org/freedesktop/PolicyKit1/Authority"
	policyKitIface   = "org.freedesktop.PolicyKit1.Authority"
)

// ActionEnumerator lists the PolicyKit authority's registered actions,
// per §4.7.
type ActionEnumerator struct {
	Client  *BusClient
	Timeout time.Duration
}

// NewActionEnumerator builds an [*ActionEnumerator] from cfg.
func NewActionEnumerator(cfg *Config, client *BusClient) *ActionEnumerator {
	return &ActionEnumerator{Client: client, Timeout: cfg.Timeout}
}

// Enumerate calls EnumerateActions and decodes its reply into
// [AuthorityAction] values.
func (e *ActionEnumerator) Enumerate(ctx context.Context) ([]AuthorityAction, error) {
	reply, err := e.Client.Call(
		ctx, policyKitBusName, policyKitPath, policyKitIface, "EnumerateActions", e.Timeout, "C",
	)
	if err != nil {
		return nil, err
	}
	if !reply.Success() {
		return nil, fmt.Errorf("busmap: EnumerateActions failed: %s", reply.ErrorName())
	}
	if len(reply.Body) != 1 {
		return nil, fmt.Errorf("busmap: EnumerateActions returned %d values, want 1", len(reply.Body))
	}

	raw, ok := reply.Body[0].([][]any)
	if !ok {
		return decodeActionsFallback(reply.Body[0])
	}
	actions := make([]AuthorityAction, 0, len(raw))
	for _, entry := range raw {
		action, err := decodeOneAction(entry)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// decodeActionsFallback handles the shape godbus returns when it cannot
// statically infer the struct slice type: a slice of the generic
// interface{} representation of each struct field tuple.
func decodeActionsFallback(body any) ([]AuthorityAction, error) {
	entries, ok := body.([]any)
	if !ok {
		return nil, fmt.Errorf("busmap: unexpected EnumerateActions reply shape %T", body)
	}
	actions := make([]AuthorityAction, 0, len(entries))
	for _, e := range entries {
		fields, ok := e.([]any)
		if !ok {
			return nil, fmt.Errorf("busmap: unexpected EnumerateActions entry shape %T", e)
		}
		action, err := decodeOneAction(fields)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeOneAction(fields []any) (AuthorityAction, error) {
	if len(fields) != 10 {
		return AuthorityAction{}, fmt.Errorf("busmap: action tuple has %d fields, want 10", len(fields))
	}
	wire := authorityActionWire{}
	var ok bool
	if wire.ID, ok = fields[0].(string); !ok {
		return AuthorityAction{}, fmt.Errorf("busmap: action id field has type %T", fields[0])
	}
	wire.Description, _ = fields[1].(string)
	wire.Message, _ = fields[2].(string)
	wire.Vendor, _ = fields[3].(string)
	wire.VendorURL, _ = fields[4].(string)
	wire.Icon, _ = fields[5].(string)
	wire.Any, _ = fields[6].(uint32)
	wire.Inactive, _ = fields[7].(uint32)
	wire.Active, _ = fields[8].(uint32)
	if annotations, ok := fields[9].(map[string]string); ok {
		wire.Annotations = annotations
	}
	return wire.toAction(), nil
}

// ActionFilter narrows an action list to those matching every clause of a
// "key1=val1,key2=val2" filter string, per §4.7's Supplemented Features.
// An empty filter, or the literal "all", matches everything.
type ActionFilter struct {
	clauses map[string]string
}

// ParseActionFilter parses a filter string. Clause keys recognized:
// "any", "inactive", "active" (matched case-insensitively against the
// action's short label); unrecognized keys never match.
func ParseActionFilter(filter string) ActionFilter {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "all") {
		return ActionFilter{}
	}
	clauses := make(map[string]string)
	for _, part := range strings.Split(filter, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		clauses[key] = strings.TrimSpace(kv[1])
	}
	return ActionFilter{clauses: clauses}
}

// Match reports whether action satisfies every clause in f.
func (f ActionFilter) Match(action AuthorityAction) bool {
	for key, want := range f.clauses {
		var got AuthResult
		switch key {
		case "any":
			got = action.Any
		case "inactive":
			got = action.Inactive
		case "active":
			got = action.Active
		default:
			return false
		}
		if !strings.EqualFold(got.ShortLabel(), want) {
			return false
		}
	}
	return true
}

// FormatAction renders action as one output line: its id followed by its
// three implicit-authorization short labels, per §4.7.
func FormatAction(action AuthorityAction) string {
	return fmt.Sprintf("%s %s/%s/%s",
		action.ID, action.Any.ShortLabel(), action.Inactive.ShortLabel(), action.Active.ShortLabel())
}

// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// Orchestrator sequences a full scan: name enumeration, process resolution,
// protection classification and introspection walking for each bus name,
// per §5.
type Orchestrator struct {
	Client          *BusClient
	Logger          SLogger
	Timeout         time.Duration
	NameFilter      string
	EnableProbes    bool
	MethodVisitor   *MethodProbeVisitor
	PropertyVisitor *PropertyProbeVisitor

	resolver *Resolver
	protect  *ProtectProbe
	walker   *Walker
}

// NewOrchestrator wires an [*Orchestrator] from cfg and an already
// registered [*BusClient].
func NewOrchestrator(cfg *Config, client *BusClient) *Orchestrator {
	o := &Orchestrator{
		Client:       client,
		Logger:       cfg.Logger,
		Timeout:      cfg.Timeout,
		NameFilter:   cfg.Name,
		EnableProbes: cfg.EnableProbes,
		resolver:     NewResolver(cfg, client),
		protect:      NewProtectProbe(cfg, client),
		walker:       NewWalker(cfg, client),
	}
	if cfg.DumpMethods {
		o.MethodVisitor = NewMethodProbeVisitor(cfg, client)
	}
	if cfg.DumpProperties {
		o.PropertyVisitor = NewPropertyProbeVisitor(cfg, client)
	}
	return o
}

// Run scans every bus name reachable from the daemon's ListNames and
// ListActivatableNames, honoring o.NameFilter if set, and prints one
// summary row per name followed by any method/property visitor output
// nested beneath it, per §5.
func (o *Orchestrator) Run(ctx context.Context) error {
	names, err := o.listNames(ctx)
	if err != nil {
		return err
	}

	scanID := NewScanID()
	o.Logger.Info("scanStart", slog.String("scanId", scanID), slog.Int("names", len(names)))

	for _, name := range names {
		if o.NameFilter != "" && string(name) != o.NameFilter {
			continue
		}
		o.scanOne(ctx, name)
	}

	o.Logger.Info("scanDone", slog.String("scanId", scanID), slog.Int("names", len(names)))
	return nil
}

// listNames merges ListNames and ListActivatableNames, deduplicated, per
// §5.1.
func (o *Orchestrator) listNames(ctx context.Context) ([]BusName, error) {
	listed, err := o.Client.SendAndExpect(
		ctx, "org.freedesktop.DBus", "/org/freedesktop/DBus",
		"org.freedesktop.DBus", "ListNames", "as", o.Timeout,
	)
	if err != nil {
		return nil, err
	}
	activatable, err := o.Client.SendAndExpect(
		ctx, "org.freedesktop.DBus", "/org/freedesktop/DBus",
		"org.freedesktop.DBus", "ListActivatableNames", "as", o.Timeout,
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[BusName]bool)
	var names []BusName
	appendUnique := func(body []any) {
		if body == nil {
			return
		}
		raw, ok := body[0].([]string)
		if !ok {
			return
		}
		for _, s := range raw {
			name := BusName(s)
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	appendUnique(listed)
	appendUnique(activatable)

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

// scanOne resolves, classifies and walks a single bus name, printing its
// summary row and any nested probe output.
func (o *Orchestrator) scanOne(ctx context.Context, name BusName) {
	record, err := o.resolver.Resolve(ctx, name)
	if err != nil {
		o.Logger.Debug("resolveFailed", slog.String("busName", string(name)), slog.Any("err", err))
	}

	var protected bool
	if o.EnableProbes {
		protected, err = o.protect.Protected(ctx, name)
		if err != nil {
			o.Logger.Debug("protectFailed", slog.String("busName", string(name)), slog.Any("err", err))
		}
	}

	fmt.Println(o.summaryRow(name, record, protected))

	if o.MethodVisitor == nil && o.PropertyVisitor == nil {
		return
	}

	// Each bus name starts with empty dedup sets, so a pair already probed
	// on one name is still probed on the next.
	if o.MethodVisitor != nil {
		o.MethodVisitor.seen = make(map[string]bool)
	}
	if o.PropertyVisitor != nil {
		o.PropertyVisitor.seen = make(map[string]bool)
	}

	visitor := o.combinedVisitor()
	o.walker.Walk(ctx, name, "/", visitor)
	if !name.IsUnique() {
		o.walker.Walk(ctx, name, DerivedPath(name), visitor)
	}
}

// combinedVisitor dispatches to whichever of the method/property probe
// visitors are enabled.
func (o *Orchestrator) combinedVisitor() Visitor {
	return VisitorFunc(func(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath) {
		if o.MethodVisitor != nil {
			o.MethodVisitor.Visit(ctx, doc, name, path)
		}
		if o.PropertyVisitor != nil {
			o.PropertyVisitor.Visit(ctx, doc, name, path)
		}
	})
}

// summaryRow formats one name's scan result, per §5.2: pid, effective
// user, the bus name with a trailing marker (' ' when protected, '!'
// otherwise), and the owning process's joined command line. An unresolved
// name reports pid -1 and user "unknown".
func (o *Orchestrator) summaryRow(name BusName, record *ProcessRecord, protected bool) string {
	marker := "!"
	if protected {
		marker = " "
	}
	if record == nil {
		return fmt.Sprintf("%-8d %-12s %s%s", -1, "unknown", name, marker)
	}
	cmdline := strings.Join(record.Cmdline, " ")
	return fmt.Sprintf("%-8d %-12s %s%s %s", record.PID, record.EUser, name, marker, cmdline)
}

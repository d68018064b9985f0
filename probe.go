// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// probeTarget names one (interface, member) pair under probe.
type probeTarget struct {
	client      *BusClient
	destination BusName
	path        dbus.ObjectPath
	iface       string
	member      string
	signature   string
	timeout     time.Duration
}

// probeCall pairs a target with the body synthesized for it, carried
// between the pipeline's synthesize and call stages.
type probeCall struct {
	target probeTarget
	body   []any
}

// synthesizeStage builds the invalid body for a target, per §4.5: the
// first stage of the probe pipeline.
type synthesizeStage struct {
	build BodyBuilder
}

func (s *synthesizeStage) Call(_ context.Context, t probeTarget) (probeCall, error) {
	return probeCall{target: t, body: s.build(t.signature)}, nil
}

// callStage issues the method call carrying the body built upstream: the
// pipeline's second stage.
type callStage struct{}

func (callStage) Call(ctx context.Context, in probeCall) (Reply, error) {
	return in.target.client.Call(
		ctx, string(in.target.destination), in.target.path,
		in.target.iface, in.target.member, in.target.timeout, in.body...,
	)
}

// classifyStage wraps [ClassifyReply] as the pipeline's third stage.
type classifyStage struct {
	logger SLogger
}

func (c classifyStage) Call(_ context.Context, reply Reply) (Verdict, error) {
	return ClassifyReply(c.logger, reply), nil
}

// newProbePipeline builds the "synthesize -> call -> classify" pipeline
// described by §4.6, used by the method visitor. The property visitor does
// not use it: it issues its Get and Set calls directly and classifies the
// Set reply with [ClassifyReply].
func newProbePipeline(build BodyBuilder, logger SLogger) Func[probeTarget, Verdict] {
	return Compose3[probeTarget, probeCall, Reply, Verdict](
		&synthesizeStage{build: build},
		callStage{},
		classifyStage{logger: logger},
	)
}

// MethodProbeVisitor probes every declared method exactly once per
// (interface, member) pair, per §4.6.
type MethodProbeVisitor struct {
	Client       *BusClient
	Logger       SLogger
	Timeout      time.Duration
	ProbeEnabled bool
	pipeline     Func[probeTarget, Verdict]

	mu   sync.Mutex
	seen map[string]bool
}

// NewMethodProbeVisitor builds a [*MethodProbeVisitor] from cfg.
func NewMethodProbeVisitor(cfg *Config, client *BusClient) *MethodProbeVisitor {
	builder := BodyBuilder(StopgapInvalidBody)
	if cfg.StrictInvalidBodies {
		builder = CorrectArityInvalidBody
	}
	return &MethodProbeVisitor{
		Client:       client,
		Logger:       cfg.Logger,
		Timeout:      cfg.Timeout,
		ProbeEnabled: cfg.EnableProbes,
		pipeline:     newProbePipeline(builder, cfg.Logger),
		seen:         make(map[string]bool),
	}
}

// Visit implements [Visitor].
func (v *MethodProbeVisitor) Visit(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath) {
	for _, ifaceDoc := range doc.Interfaces {
		for _, method := range ifaceDoc.Methods {
			key := "m:" + ifaceDoc.Name + "." + method.Name
			if !v.markSeen(key) {
				continue
			}
			v.probeOne(ctx, name, path, ifaceDoc.Name, method)
		}
	}
}

func (v *MethodProbeVisitor) markSeen(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[key] {
		return false
	}
	v.seen[key] = true
	return true
}

func (v *MethodProbeVisitor) probeOne(ctx context.Context, name BusName, path dbus.ObjectPath, iface string, method introspect.Method) {
	label := fmt.Sprintf("m:%s.%s", iface, method.Name)

	if !v.ProbeEnabled {
		v.report(label, path)
		return
	}

	target := probeTarget{
		client: v.Client, destination: name, path: path,
		iface: iface, member: method.Name,
		signature: MethodInputSignature(method), timeout: v.Timeout,
	}

	verdict, err := v.pipeline.Call(ctx, target)
	if err != nil {
		v.Logger.Debug("methodProbeTransportError", slog.String("target", label), slog.Any("err", err))
		return
	}
	if verdict == VerdictReachable {
		v.report(label, path)
	}
}

func (v *MethodProbeVisitor) report(label string, path dbus.ObjectPath) {
	fmt.Printf("\t%s %s\n", label, path)
}

// PropertyProbeVisitor probes every declared property exactly once per
// (interface, property) pair, per §4.6.
//
// A property is probed by first calling Get: on success its returned
// variant is reused as the write-back value for Set, otherwise a
// deliberately invalid value is synthesized. Set is then always attempted
// (Get alone cannot exercise a write-only property's access control, and a
// successful Get does not imply Set is also reachable).
type PropertyProbeVisitor struct {
	Client         *BusClient
	Logger         SLogger
	Timeout        time.Duration
	ProbeEnabled   bool
	IncludeInvalid bool
	build          BodyBuilder

	mu   sync.Mutex
	seen map[string]bool
}

// NewPropertyProbeVisitor builds a [*PropertyProbeVisitor] from cfg.
func NewPropertyProbeVisitor(cfg *Config, client *BusClient) *PropertyProbeVisitor {
	builder := BodyBuilder(StopgapInvalidBody)
	if cfg.StrictInvalidBodies {
		builder = CorrectArityInvalidBody
	}
	return &PropertyProbeVisitor{
		Client:         client,
		Logger:         cfg.Logger,
		Timeout:        cfg.Timeout,
		ProbeEnabled:   cfg.EnableProbes,
		IncludeInvalid: cfg.IncludeInvalid,
		build:          builder,
		seen:           make(map[string]bool),
	}
}

// Visit implements [Visitor].
func (v *PropertyProbeVisitor) Visit(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath) {
	for _, ifaceDoc := range doc.Interfaces {
		for _, prop := range ifaceDoc.Properties {
			key := "p:" + ifaceDoc.Name + "." + prop.Name
			if !v.markSeen(key) {
				continue
			}
			v.probeOne(ctx, name, path, ifaceDoc.Name, prop)
		}
	}
}

func (v *PropertyProbeVisitor) markSeen(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[key] {
		return false
	}
	v.seen[key] = true
	return true
}

func (v *PropertyProbeVisitor) probeOne(ctx context.Context, name BusName, path dbus.ObjectPath, iface string, prop introspect.Property) {
	label := fmt.Sprintf("p:%s.%s", iface, prop.Name)

	if !v.ProbeEnabled {
		v.report(label, path)
		return
	}

	value := v.getOrSynthesize(ctx, name, path, iface, prop)

	reply, err := v.Client.Call(
		ctx, string(name), path, "org.freedesktop.DBus.Properties", "Set", v.Timeout,
		iface, prop.Name, dbus.MakeVariant(value),
	)
	if err != nil {
		if v.IncludeInvalid {
			fmt.Printf("\tp?%s %s\n", label[2:], path)
		}
		v.Logger.Debug("propertyProbeTransportError", slog.String("target", label), slog.Any("err", err))
		return
	}
	if ClassifyReply(v.Logger, reply) == VerdictReachable {
		v.report(label, path)
	}
}

// getOrSynthesize calls Properties.Get first, per §4.6: on success its
// returned variant is reused as the Set write-back value, otherwise a
// deliberately invalid value is synthesized for prop's declared type.
func (v *PropertyProbeVisitor) getOrSynthesize(ctx context.Context, name BusName, path dbus.ObjectPath, iface string, prop introspect.Property) any {
	reply, err := v.Client.Call(
		ctx, string(name), path, "org.freedesktop.DBus.Properties", "Get", v.Timeout,
		iface, prop.Name,
	)
	if err == nil && reply.Success() && len(reply.Body) == 1 {
		if variant, ok := reply.Body[0].(dbus.Variant); ok {
			return variant.Value()
		}
	}
	return v.invalidValueFor(prop)
}

// invalidValueFor builds a single deliberately mistyped value for prop's
// declared type, per §4.5, for use as the Set argument.
func (v *PropertyProbeVisitor) invalidValueFor(prop introspect.Property) any {
	body := v.build(PropertySignature(prop))
	if len(body) == 0 {
		return "__busmap_invalid__"
	}
	return body[0]
}

func (v *PropertyProbeVisitor) report(label string, path dbus.ObjectPath) {
	fmt.Printf("\t%s %s\n", label, path)
}

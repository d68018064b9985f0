// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import "github.com/busmap/busmap/errclass"

// ErrClassifier classifies transport-level Go errors into categorical
// strings for structured logging (e.g. "ETIMEDOUT", "ECONNREFUSED").
//
// This is distinct from [ClassifyReply], which classifies peer-originated
// D-Bus error replies (a [*dbus.Error], not a Go transport error) into the
// Reachable/AccessControlled verdicts (an unrecognized error name
// classifies as Reachable).
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies transport errors using [errclass.New].
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)

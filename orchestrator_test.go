// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryRowUnprotected(t *testing.T) {
	o := &Orchestrator{}
	record := &ProcessRecord{PID: 100, EUser: "alice", Cmdline: []string{"/usr/bin/foo", "--bar"}}
	row := o.summaryRow("org.example.Foo", record, false)
	assert.Contains(t, row, "100")
	assert.Contains(t, row, "alice")
	assert.Contains(t, row, "org.example.Foo!")
	assert.Contains(t, row, "/usr/bin/foo --bar")
}

func TestSummaryRowProtected(t *testing.T) {
	o := &Orchestrator{}
	record := &ProcessRecord{PID: 100, EUser: "alice"}
	row := o.summaryRow("org.example.Foo", record, true)
	assert.Contains(t, row, "org.example.Foo ")
}

func TestSummaryRowMissingRecord(t *testing.T) {
	o := &Orchestrator{}
	row := o.summaryRow("org.example.Foo", nil, false)
	assert.Contains(t, row, "-1")
	assert.Contains(t, row, "unknown")
}

func TestListNamesDedupsAcrossListAndActivatable(t *testing.T) {
	seen := make(map[BusName]bool)
	var names []BusName
	appendUnique := func(raw []string) {
		for _, s := range raw {
			name := BusName(s)
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	appendUnique([]string{"org.a", "org.b"})
	appendUnique([]string{"org.b", "org.c"})
	assert.ElementsMatch(t, []BusName{"org.a", "org.b", "org.c"}, names)
}

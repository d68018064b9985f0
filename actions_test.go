// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseActionFilterEmpty(t *testing.T) {
	filter := ParseActionFilter("")
	action := AuthorityAction{Any: AuthNotAuthorized}
	assert.True(t, filter.Match(action))
}

func TestParseActionFilterAll(t *testing.T) {
	filter := ParseActionFilter("all")
	action := AuthorityAction{Any: AuthAuthorized}
	assert.True(t, filter.Match(action))
}

func TestParseActionFilterSingleClause(t *testing.T) {
	filter := ParseActionFilter("any=no")
	assert.True(t, filter.Match(AuthorityAction{Any: AuthNotAuthorized}))
	assert.False(t, filter.Match(AuthorityAction{Any: AuthAuthorized}))
}

func TestParseActionFilterMultipleClausesAreAnded(t *testing.T) {
	filter := ParseActionFilter("any=no,active=yes")
	assert.True(t, filter.Match(AuthorityAction{Any: AuthNotAuthorized, Active: AuthAuthorized}))
	assert.False(t, filter.Match(AuthorityAction{Any: AuthNotAuthorized, Active: AuthNotAuthorized}))
}

func TestParseActionFilterUnknownKeyNeverMatches(t *testing.T) {
	filter := ParseActionFilter("bogus=whatever")
	assert.False(t, filter.Match(AuthorityAction{}))
}

func TestFormatAction(t *testing.T) {
	action := AuthorityAction{
		ID:       "org.example.action",
		Any:      AuthNotAuthorized,
		Inactive: AuthAuthenticationRequired,
		Active:   AuthAuthorized,
	}
	assert.Equal(t, "org.example.action No/Auth/Yes", FormatAction(action))
}

func TestDecodeOneAction(t *testing.T) {
	fields := []any{
		"org.example.action", "desc", "msg", "vendor", "https://example.org", "icon.png",
		uint32(0), uint32(1), uint32(5), map[string]string{"k": "v"},
	}
	action, err := decodeOneAction(fields)
	assert.NoError(t, err)
	assert.Equal(t, "org.example.action", action.ID)
	assert.Equal(t, AuthNotAuthorized, action.Any)
	assert.Equal(t, AuthAuthenticationRequired, action.Inactive)
	assert.Equal(t, AuthAuthorized, action.Active)
}

func TestDecodeOneActionWrongArity(t *testing.T) {
	_, err := decodeOneAction([]any{"too", "few"})
	assert.Error(t, err)
}

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Commands {
		name := c.CommandName()
		assert.False(t, seen[name], "duplicate command %s", name)
		seen[name] = true
	}
	for _, want := range []string{"clockin", "clockout", "sessionstart", "sessionend", "urn", "rep", "unrep", "getreps", "list", "tod", "getdata", "sessionhistory", "Get User ID"} {
		assert.True(t, seen[want], "missing command %s", want)
	}
}

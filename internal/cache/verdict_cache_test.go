package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"turtlesoup/internal/model"
)

func TestVerdictKey(t *testing.T) {
	p := model.Puzzle{Prompt: "prompt", Solution: "solution"}

	base := VerdictKey(p, "Is he an astronaut?")
	assert.True(t, strings.HasPrefix(base, "verdict:"))
	assert.Equal(t, base, VerdictKey(p, "  is HE   an astronaut? "))
	assert.NotEqual(t, base, VerdictKey(p, "Is he a pilot?"))
	assert.NotEqual(t, base, VerdictKey(model.Puzzle{Prompt: "prompt", Solution: "other"}, "Is he an astronaut?"))

	// prompt/solution boundaries are part of the key
	assert.NotEqual(t,
		VerdictKey(model.Puzzle{Prompt: "ab", Solution: "c"}, "q"),
		VerdictKey(model.Puzzle{Prompt: "a", Solution: "bc"}, "q"))
}

package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "nice", Sanitize("nice"))
	assert.Equal(t, "hello", Sanitize("<b>hello</b>"))
	assert.Equal(t, "", Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "padded", Sanitize("  padded  "))
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	assert.Equal(t, "don't stop", Sanitize("don't stop"))
	assert.Equal(t, "Tom & Jerry", Sanitize("Tom & Jerry"))
	assert.Equal(t, `say "hi"`, Sanitize(`say "hi"`))
	assert.Equal(t, "I <3 this", Sanitize("I <3 this"))

	amps := strings.Repeat("&", 1000)
	assert.Equal(t, amps, Sanitize(amps))
}

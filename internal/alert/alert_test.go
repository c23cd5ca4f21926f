package alert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestDisplayReplacesContent(t *testing.T) {
	var buf Buffer

	DisplayError(&buf, "bad password")
	first := string(buf.HTML())
	assert.Contains(t, first, "alert-danger")
	assert.Contains(t, first, "bad password")

	DisplaySuccess(&buf, "password changed")
	second := string(buf.HTML())
	assert.Contains(t, second, "alert-success")
	assert.Contains(t, second, "password changed")
	assert.NotContains(t, second, "bad password")
	assert.NotContains(t, second, "alert-danger")
	assert.Equal(t, 1, strings.Count(second, "<div "), "exactly one alert element")
}

func TestRender(t *testing.T) {
	got := string(Render(Success, "ok"))
	want := "<div class='alert alert-success alert-dismissible'>\n" +
		"   ok\n" +
		"   <button type=\"button\" class=\"btn-close\" data-bs-dismiss=\"alert\" aria-label=\"Close\"></button>\n" +
		"</div>"
	assert.Equal(t, want, got)
}

func TestRenderKeepsMarkup(t *testing.T) {
	got := string(Render(Error, "<strong>nope</strong>"))
	assert.Contains(t, got, "<strong>nope</strong>")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "alert-danger", Error.Class())
	assert.Equal(t, "alert-success", Success.Class())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "success", Success.String())
}

func TestTerminal(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	term := Terminal{W: &out}

	DisplayError(term, "Invalid access token")
	DisplaySuccess(term, "logged in")

	assert.Equal(t, "✗ error: Invalid access token\n✓ logged in\n", out.String())
}

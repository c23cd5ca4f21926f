// Package alert renders Bootstrap-style alert banners into a render target.
package alert

import (
	"html/template"
	"strings"
	"sync"
)

// Kind is the severity of an alert.
type Kind int

const (
	Error Kind = iota
	Success
)

// Class returns the Bootstrap contextual class for k.
func (k Kind) Class() string {
	if k == Success {
		return "alert-success"
	}
	return "alert-danger"
}

func (k Kind) String() string {
	if k == Success {
		return "success"
	}
	return "error"
}

// Container is a render target. Replace overwrites whatever the container
// showed before.
type Container interface {
	Replace(fragment template.HTML)
}

// Message is implemented by containers that can show the plain message
// instead of the HTML fragment, like a terminal.
type Message interface {
	ReplaceMessage(kind Kind, message string)
}

// DisplayError replaces the content of c with a single error alert.
func DisplayError(c Container, message string) {
	display(c, Error, message)
}

// DisplaySuccess replaces the content of c with a single success alert.
func DisplaySuccess(c Container, message string) {
	display(c, Success, message)
}

func display(c Container, kind Kind, message string) {
	if m, ok := c.(Message); ok {
		m.ReplaceMessage(kind, message)
		return
	}
	c.Replace(Render(kind, message))
}

// Render builds the alert fragment. The message is inserted verbatim and may
// carry markup.
func Render(kind Kind, message string) template.HTML {
	var b strings.Builder
	b.WriteString("<div class='alert ")
	b.WriteString(kind.Class())
	b.WriteString(" alert-dismissible'>\n   ")
	b.WriteString(message)
	b.WriteString("\n   <button type=\"button\" class=\"btn-close\" data-bs-dismiss=\"alert\" aria-label=\"Close\"></button>\n</div>")
	return template.HTML(b.String())
}

// Buffer is an in-memory Container that keeps only the last fragment.
type Buffer struct {
	mu      sync.Mutex
	content template.HTML
}

func (b *Buffer) Replace(fragment template.HTML) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = fragment
}

// HTML returns the current content.
func (b *Buffer) HTML() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

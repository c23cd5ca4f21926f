package web

import (
	"html/template"
	"io"
	"net/http"
)

// fragment is an alert.Container writing straight into the response.
// Replace must be called at most once per request.
type fragment struct {
	w      http.ResponseWriter
	status int
}

func newFragment(w http.ResponseWriter, status int) *fragment {
	return &fragment{w: w, status: status}
}

func (f *fragment) Replace(html template.HTML) {
	f.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	f.w.WriteHeader(f.status)
	io.WriteString(f.w, string(html))
}

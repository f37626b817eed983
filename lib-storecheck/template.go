package storecheck

import (
	"io"
	"strings"
	"text/template"
)

// MessageContext is the value that message templates can refer.
type MessageContext struct {
	Name       string
	Status     Status
	Latency    int64
	StatusCode int
}

// Template is a parsed message template.
// A nil *Template means there is no template.
type Template struct {
	text string
	tmpl *template.Template
}

// ParseTemplate parses a message template.
//
// The template is rendered once against a sample context for each status, so a reference to an unknown field is reported here instead of at check time.
func ParseTemplate(name, text string) (*Template, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return nil, err
	}

	for _, s := range []Status{StatusHealthy, StatusDegraded, StatusDown} {
		sample := MessageContext{Name: "Sample", Status: s, Latency: 1234, StatusCode: 200}
		if err := t.Execute(io.Discard, sample); err != nil {
			return nil, err
		}
	}

	return &Template{text: text, tmpl: t}, nil
}

// MustParseTemplate is like ParseTemplate but panics if the template is invalid.
func MustParseTemplate(text string) *Template {
	t, err := ParseTemplate("message", text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with ctx.
func (t *Template) Render(ctx MessageContext) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// String returns the source text of the template, or an empty string for nil.
func (t *Template) String() string {
	if t == nil {
		return ""
	}
	return t.text
}

// Equal reports whether both templates have the same source text.
func (t *Template) Equal(u *Template) bool {
	return (t == nil) == (u == nil) && t.String() == u.String()
}

// Package render turns a session into HTML.
package render

import (
	"fmt"
	"html/template"
	"io"

	"chatui/chat"
	"chatui/format"
	"chatui/models"
	"chatui/popover"
	"chatui/session"
)

// DefaultSampleQuestions are offered on the welcome screen
var DefaultSampleQuestions = []string{
	"How does AI work?",
	"Are black holes real?",
	`How many Rs are in the word "strawberry"?`,
	"What is the meaning of life?",
}

// Page is the input of a full page render
type Page struct {
	Session         session.Snapshot
	Popover         popover.View
	Theme           string
	SampleQuestions []string
}

// MessageView is a transcript entry prepared for the templates
type MessageView struct {
	ID       string
	Role     chat.Role
	Pending  bool
	Error    bool
	Text     string
	Body     template.HTML
	ImageURL string
	VideoURL string
}

type pageData struct {
	Theme           string
	Selection       models.Selection
	FirstMessage    bool
	SampleQuestions []string
	Messages        []MessageView
	Popover         popover.View
}

// Renderer holds the parsed templates
type Renderer struct {
	tmpl *template.Template
}

// New parses the templates
func New() (*Renderer, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	if _, err := tmpl.New("partials").Parse(partialTemplates); err != nil {
		return nil, fmt.Errorf("failed to parse partial templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderPage writes the full chat page
func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	data := pageData{
		Theme:           p.Theme,
		Selection:       p.Session.Selection,
		FirstMessage:    p.Session.FirstMessage,
		SampleQuestions: p.SampleQuestions,
		Popover:         p.Popover,
	}
	if data.Theme == "" {
		data.Theme = "dark"
	}
	if data.SampleQuestions == nil {
		data.SampleQuestions = DefaultSampleQuestions
	}
	for _, m := range p.Session.Messages {
		data.Messages = append(data.Messages, View(m))
	}
	return r.tmpl.ExecuteTemplate(w, "page", data)
}

// RenderMessage writes one transcript entry, as returned to AJAX submissions
func (r *Renderer) RenderMessage(w io.Writer, m chat.Message) error {
	return r.tmpl.ExecuteTemplate(w, "message", View(m))
}

// View prepares a message for rendering. User text stays plain and is escaped
// by the template. Bot text goes through the formatter and the sanitizer.
func View(m chat.Message) MessageView {
	v := MessageView{
		ID:      m.ID,
		Role:    m.Role,
		Pending: m.Pending,
		Error:   m.IsError(),
	}
	if m.Role == chat.RoleUser {
		v.Text = m.Text
		return v
	}
	if m.Pending {
		return v
	}
	if url, ok := m.Response.FirstImage(); ok {
		v.ImageURL = url
		return v
	}
	if url, ok := m.Response.FirstVideo(); ok {
		v.VideoURL = url
		return v
	}
	v.Body = template.HTML(format.Render(m.Response.FallbackText()))
	return v
}

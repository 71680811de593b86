package page

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/deepgram/insights/internal/services/conversation"
	embedpanel "github.com/deepgram/insights/internal/services/embed"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// EmptyTranscriptTip is shown until the first message is sent
	EmptyTranscriptTip = `Type a question to start, e.g., "What were the total sales for Basic T-Shirt last month?"`
	// TypingIndicator is the transient placeholder shown while a request is pending
	TypingIndicator = "Typing..."
)

type Options struct {
	Title string
	// Footer is operator-supplied Markdown; raw HTML in it is dropped
	Footer string
	Report *embedpanel.Panel
	// Calendar is optional; a nil panel leaves the calendar out of the page
	Calendar   *embedpanel.Panel
	ScriptPath string
	// APIPrefix is where the conversation API is mounted, e.g. "/v1"
	APIPrefix string
}

// Composer lays out the report panel, the conversation widget and the
// optional calendar panel. It holds no state of its own.
type Composer struct {
	tmpl     *template.Template
	opts     Options
	footer   template.HTML
	report   template.HTML
	calendar template.HTML
}

type pageData struct {
	Title        string
	Footer       template.HTML
	Report       template.HTML
	Calendar     template.HTML
	HasCalendar  bool
	ScriptPath   string
	APIPrefix    string
	Conversation conversationView
}

type conversationView struct {
	ID       string
	State    string
	Pending  bool
	Version  uint64
	Tip      string
	Typing   string
	Messages []messageView
}

type messageView struct {
	Sender string
	Label  string
	Body   template.HTML
}

func NewComposer(opts Options) (*Composer, error) {
	if opts.Report == nil {
		return nil, errors.New("page: report panel must not be nil")
	}
	if opts.ScriptPath == "" {
		opts.ScriptPath = "/static/widget.js"
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/v1"
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("page: parse templates: %w", err)
	}

	report, err := opts.Report.Render()
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	footer, err := newMarkdownRenderer().Render(opts.Footer)
	if err != nil {
		return nil, fmt.Errorf("page: render footer: %w", err)
	}

	var calendar template.HTML
	if opts.Calendar != nil {
		calendar, err = opts.Calendar.Render()
		if err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
	}

	log.Info().
		Bool("report_configured", opts.Report.Configured()).
		Bool("calendar", opts.Calendar != nil).
		Msg("Initialising page composer")

	return &Composer{
		tmpl:     tmpl,
		opts:     opts,
		footer:   footer,
		report:   report,
		calendar: calendar,
	}, nil
}

// RenderPage writes the full dashboard document for one conversation
func (c *Composer) RenderPage(w io.Writer, snap conversation.Snapshot) error {
	return c.tmpl.ExecuteTemplate(w, "page.html", pageData{
		Title:        c.opts.Title,
		Footer:       c.footer,
		Report:       c.report,
		Calendar:     c.calendar,
		HasCalendar:  c.opts.Calendar != nil,
		ScriptPath:   c.opts.ScriptPath,
		APIPrefix:    c.opts.APIPrefix,
		Conversation: c.conversationView(snap),
	})
}

// RenderTranscript writes only the message list, used for live updates
func (c *Composer) RenderTranscript(w io.Writer, snap conversation.Snapshot) error {
	return c.tmpl.ExecuteTemplate(w, "transcript", c.conversationView(snap))
}

// TranscriptHTML is RenderTranscript into a string
func (c *Composer) TranscriptHTML(snap conversation.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := c.RenderTranscript(&buf, snap); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Composer) conversationView(snap conversation.Snapshot) conversationView {
	view := conversationView{
		ID:       snap.ID,
		State:    snap.State.String(),
		Pending:  snap.Pending,
		Version:  snap.Version,
		Tip:      EmptyTranscriptTip,
		Typing:   TypingIndicator,
		Messages: make([]messageView, 0, len(snap.Messages)),
	}

	for _, m := range snap.Messages {
		mv := messageView{Sender: string(m.Sender)}
		if m.Sender == conversation.SenderUser {
			mv.Label = "You:"
		} else {
			mv.Label = "Agent:"
		}
		// Both senders are shown verbatim
		mv.Body = template.HTML(template.HTMLEscapeString(m.Text))
		view.Messages = append(view.Messages, mv)
	}

	return view
}

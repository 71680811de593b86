package page

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/deepgram/insights/internal/config"
	"github.com/deepgram/insights/internal/services/conversation"
	"github.com/deepgram/insights/internal/services/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer(t *testing.T, withCalendar bool) *Composer {
	t.Helper()
	opts := Options{
		Title:  "AI-Powered Sales Insights",
		Footer: "© 2024 AI Sales Analytics Project",
		Report: embed.NewReportPanel("https://lookerstudio.google.com/embed/reporting/r1"),
	}
	if withCalendar {
		opts.Calendar = embed.NewCalendarPanel(config.CalendarEmbedPlaceholder)
	}
	c, err := NewComposer(opts)
	require.NoError(t, err)
	return c
}

func render(t *testing.T, fn func(*bytes.Buffer) error) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestNewComposer_RequiresReport(t *testing.T) {
	_, err := NewComposer(Options{})
	require.Error(t, err)
}

func TestRenderPage_Layout(t *testing.T) {
	c := newTestComposer(t, false)
	snap := conversation.Snapshot{ID: "conv-1", State: conversation.StateIdle}

	doc := render(t, func(b *bytes.Buffer) error { return c.RenderPage(b, snap) })

	assert.Equal(t, "AI-Powered Sales Insights", doc.Find("header h1").Text())
	assert.Contains(t, doc.Find("footer").Text(), "© 2024 AI Sales Analytics Project")
	assert.Equal(t, 1, doc.Find("main .dashboard-section iframe").Length())
	assert.Equal(t, 0, doc.Find(".calendar-section").Length())

	widget := doc.Find("#chat-agent")
	id, _ := widget.Attr("data-conversation-id")
	assert.Equal(t, "conv-1", id)
	prefix, _ := widget.Attr("data-api-prefix")
	assert.Equal(t, "/v1", prefix)

	src, _ := doc.Find("script").Attr("src")
	assert.Equal(t, "/static/widget.js", src)

	_, disabled := doc.Find("#message-input").Attr("disabled")
	assert.False(t, disabled)
}

func TestRenderPage_WithCalendar(t *testing.T) {
	c := newTestComposer(t, true)
	doc := render(t, func(b *bytes.Buffer) error {
		return c.RenderPage(b, conversation.Snapshot{ID: "conv-1"})
	})

	calendar := doc.Find(".calendar-section")
	require.Equal(t, 1, calendar.Length())
	assert.Equal(t, 0, calendar.Find("iframe").Length())
	assert.Contains(t, calendar.Text(), "CALENDAR_EMBED_URL")
}

func TestRenderTranscript_Empty(t *testing.T) {
	c := newTestComposer(t, false)
	doc := render(t, func(b *bytes.Buffer) error {
		return c.RenderTranscript(b, conversation.Snapshot{ID: "conv-1"})
	})

	assert.Equal(t, EmptyTranscriptTip, doc.Find(".no-messages-tip").Text())
	assert.Equal(t, 0, doc.Find(".message").Length())
	assert.Equal(t, 1, doc.Find("#messages-end").Length())
}

func TestRenderTranscript_MessagesAndTypingIndicator(t *testing.T) {
	c := newTestComposer(t, false)
	messages := conversation.Transcript{}.
		Append(conversation.Message{Sender: conversation.SenderUser, Text: "Total sales <b>last</b> month?"}).
		Append(conversation.Message{Sender: conversation.SenderAgent, Text: "**42 units**"}).
		Append(conversation.Message{Sender: conversation.SenderUser, Text: "And this month?"})

	pending := conversation.Snapshot{ID: "conv-1", Messages: messages, State: conversation.StatePending, Pending: true, Version: 3}
	doc := render(t, func(b *bytes.Buffer) error { return c.RenderTranscript(b, pending) })

	entries := doc.Find("#messages > .message")
	require.Equal(t, 4, entries.Length())

	assert.True(t, entries.Eq(0).HasClass("user"))
	assert.Equal(t, "You: Total sales <b>last</b> month?", strings.TrimSpace(entries.Eq(0).Text()))
	assert.Equal(t, 0, entries.Eq(0).Find("b").Length())

	assert.True(t, entries.Eq(1).HasClass("agent"))
	assert.Equal(t, "**42 units**", entries.Eq(1).Find(".message-text").Text())

	last := entries.Last()
	assert.True(t, last.HasClass("loading"))
	assert.Equal(t, "Agent: "+TypingIndicator, strings.TrimSpace(last.Text()))

	version, _ := doc.Find("#messages").Attr("data-version")
	assert.Equal(t, "3", version)
	state, _ := doc.Find("#messages").Attr("data-state")
	assert.Equal(t, "pending", state)

	idle := pending
	idle.State = conversation.StateIdle
	idle.Pending = false
	doc = render(t, func(b *bytes.Buffer) error { return c.RenderTranscript(b, idle) })
	assert.Equal(t, 0, doc.Find(".loading").Length())
	assert.Equal(t, 3, doc.Find("#messages > .message").Length())
}

func TestRenderPage_PendingDisablesInput(t *testing.T) {
	c := newTestComposer(t, false)
	snap := conversation.Snapshot{
		ID:       "conv-1",
		Messages: conversation.Transcript{{Sender: conversation.SenderUser, Text: "hi"}},
		State:    conversation.StatePending,
		Pending:  true,
	}
	doc := render(t, func(b *bytes.Buffer) error { return c.RenderPage(b, snap) })

	_, inputDisabled := doc.Find("#message-input").Attr("disabled")
	_, buttonDisabled := doc.Find("#message-send").Attr("disabled")
	assert.True(t, inputDisabled)
	assert.True(t, buttonDisabled)
}

func TestRenderTranscript_AgentTextVerbatim(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "angle brackets", text: "Top SKU is <Basic T-Shirt> at 42 units"},
		{name: "asterisks", text: "2*3*4 = 24"},
		{name: "leading ordinal", text: "1. is the rank"},
		{name: "inline tag", text: "use <b>bold</b> sparingly"},
		{name: "newlines", text: "Region A: 10\nRegion B: 32"},
	}

	c := newTestComposer(t, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := conversation.Snapshot{
				ID:       "conv-1",
				Messages: conversation.Transcript{{Sender: conversation.SenderAgent, Text: tt.text}},
			}
			var buf bytes.Buffer
			require.NoError(t, c.RenderTranscript(&buf, snap))
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
			require.NoError(t, err)

			body := doc.Find(".message.agent .message-text")
			require.Equal(t, 1, body.Length())
			assert.Equal(t, tt.text, body.Text())
			assert.Equal(t, 0, body.Children().Length())
			assert.NotContains(t, buf.String(), "raw HTML omitted")
		})
	}
}

func TestRenderPage_FooterMarkdown(t *testing.T) {
	c, err := NewComposer(Options{
		Footer: "Built by [Sales Ops](https://example.com/ops) <i>team</i>",
		Report: embed.NewReportPanel("https://lookerstudio.google.com/embed/reporting/r1"),
	})
	require.NoError(t, err)

	doc := render(t, func(b *bytes.Buffer) error {
		return c.RenderPage(b, conversation.Snapshot{ID: "conv-1"})
	})

	link := doc.Find("footer .footer-text a")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com/ops", href)
	assert.Equal(t, "Sales Ops", link.Text())
	assert.Equal(t, 0, doc.Find("footer i").Length())
}

func TestRenderPage_SubmitErrorSlot(t *testing.T) {
	c := newTestComposer(t, false)
	doc := render(t, func(b *bytes.Buffer) error {
		return c.RenderPage(b, conversation.Snapshot{ID: "conv-1"})
	})

	slot := doc.Find("#chat-agent #message-error")
	require.Equal(t, 1, slot.Length())
	_, hidden := slot.Attr("hidden")
	assert.True(t, hidden)
	role, _ := slot.Attr("role")
	assert.Equal(t, "alert", role)
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out, err := newMarkdownRenderer().Render(`hello <b onclick="x()">world</b>`)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<b")
	assert.Contains(t, string(out), "hello")
	assert.Contains(t, string(out), "world")
}

func TestTranscriptHTML(t *testing.T) {
	c := newTestComposer(t, false)
	html, err := c.TranscriptHTML(conversation.Snapshot{ID: "conv-1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<div class="messages-display"`))
}

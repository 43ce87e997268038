package handlers

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/dustin/go-humanize"
)

const (
	listTimeLayout   = "02.01.2006 15:04"
	reasonPreviewLen = 80
)

// StatusEmoji значок состояния заявки в списках
func StatusEmoji(state model.RequestState) string {
	switch state {
	case model.StateCollectingReason:
		return "📝"
	case model.StateAwaitingReview:
		return "👀"
	case model.StateApproved:
		return "✅"
	case model.StateDeclined:
		return "❌"
	default:
		return "⏳"
	}
}

// FormatRequestList HTML-список заявок для админ-команд
func FormatRequestList(title string, items []*model.JoinRequest, emptyText string, msgs *messages.Catalog, loc *time.Location, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b> (%d)\n", html.EscapeString(title), len(items))

	if len(items) == 0 {
		sb.WriteString("\n")
		sb.WriteString(html.EscapeString(emptyText))
		return sb.String()
	}

	for _, jr := range items {
		sb.WriteString("\n")
		sb.WriteString(formatRequestLine(jr.State(), jr.Context(), msgs, loc, now))
	}
	return sb.String()
}

func formatRequestLine(state model.RequestState, c model.JoinRequestContext, msgs *messages.Catalog, loc *time.Location, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s <b>%s</b>", StatusEmoji(state), html.EscapeString(c.DisplayName))
	if c.Username != "" {
		fmt.Fprintf(&sb, " (@%s)", html.EscapeString(c.Username))
	}
	fmt.Fprintf(&sb, " · <code>%d</code>\n", c.UserID)

	fmt.Fprintf(&sb, "   🕐 %s (%s)\n",
		c.Timestamp.In(loc).Format(listTimeLayout),
		msgs.RelTime(c.Timestamp, now),
	)

	if c.Reason != "" {
		fmt.Fprintf(&sb, "   📝 %s\n", html.EscapeString(preview(c.Reason, reasonPreviewLen)))
	}
	if n := len(c.AdditionalMessages); n > 0 {
		fmt.Fprintf(&sb, "   ➕ %s\n", humanize.Comma(int64(n)))
	}
	if d := c.Decision; d != nil && d.AdminName != "" {
		fmt.Fprintf(&sb, "   👤 %s\n", html.EscapeString(d.AdminName))
	}

	return sb.String()
}

// preview обрезает текст до limit символов
func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// parseCommand разбирает "/cmd@bot arg1 arg2"
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), fields[1:]
}

// CommandName имя команды в тексте или пустая строка
func CommandName(text string) string {
	name, _ := parseCommand(text)
	return name
}

package telegram

import (
	"fmt"
	"strings"
	"time"
)

// DigestRunSummary carries the outcome of a weekly digest run for notification.
type DigestRunSummary struct {
	WeekOf     time.Time
	Processed  int
	Failed     int
	Errors     []string
	Categories map[string]string // category -> "live" | "fallback" | "stub"
}

// FormatDigestRunForTelegram renders a weekly digest run result as a Markdown
// message, truncated to Telegram's message size limit.
func FormatDigestRunForTelegram(run DigestRunSummary) string {
	const maxLen = 4090

	var b strings.Builder
	b.WriteString("🌁 *SF Weekly Pulse* 🌁\n\n")
	b.WriteString(fmt.Sprintf("📅 *Week of:* %s\n", run.WeekOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("✅ *Processed:* %d\n", run.Processed))
	b.WriteString(fmt.Sprintf("❌ *Failed:* %d\n", run.Failed))

	if len(run.Categories) > 0 {
		b.WriteString("\n*Categories:*\n")
		for category, kind := range run.Categories {
			var icon string
			switch kind {
			case "live":
				icon = "🟢"
			case "fallback":
				icon = "🟡"
			default:
				icon = "⚪"
			}
			b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, category, kind))
		}
	}

	if len(run.Errors) > 0 {
		b.WriteString("\n*Errors:*\n")
		for _, e := range run.Errors {
			b.WriteString(fmt.Sprintf("• %s\n", e))
		}
	}

	msg := b.String()
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

package bot

import (
	"fmt"
	"txtsummarizer/internal/bullets"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/markdown"
	"txtsummarizer/internal/session"
)

const (
	exportFileName = "summary.txt"

	previewTitle = "Original Text Preview"
	summaryTitle = "🔑 Key Points Summary"
)

// renderOutcome turns an outcome into MarkdownV2 message texts.
func renderOutcome(outcome session.Outcome, profile domain.Profile) []string {
	switch outcome.State {
	case domain.StateDone:
		return renderSummary(outcome.Preview, outcome.Document, profile)
	case domain.StateReady:
		return []string{"✅ " + markdown.EscapeV2(outcome.Message)}
	case domain.StateRejected:
		return []string{"⚠️ " + markdown.EscapeV2(outcome.Message)}
	case domain.StateFailed:
		failure := "❌ " + markdown.EscapeV2(outcome.Message)
		if outcome.Preview == "" {
			return []string{failure}
		}

		return markdown.Chunk([]string{renderPreview(outcome.Preview, profile), "", failure}, markdown.MaxMessageLength)
	case domain.StateRunning:
		return []string{"⏳ " + markdown.EscapeV2(outcome.Message)}
	default:
		return []string{"✖️ " + markdown.EscapeV2(outcome.Message)}
	}
}

func renderSummary(preview string, doc bullets.Document, profile domain.Profile) []string {
	var blocks []string

	if preview != "" {
		blocks = append(blocks, renderPreview(preview, profile), "")
	}

	blocks = append(blocks, markdown.Bold(summaryTitle))

	lines := doc.Lines()
	if len(lines) == 0 {
		blocks = append(blocks, "_"+markdown.EscapeV2("The model returned no key points.")+"_")
	}

	for _, line := range lines {
		blocks = append(blocks, markdown.EscapeV2(line))
	}

	return markdown.Chunk(blocks, markdown.MaxMessageLength)
}

func renderRecord(record *domain.SummaryRecord, profile domain.Profile) []string {
	header := fmt.Sprintf("🗂 %s", markdown.EscapeV2(fmt.Sprintf(
		"%s, %s UTC",
		record.FileName,
		record.CreatedAt.UTC().Format("2006-01-02 15:04"),
	)))

	messages := renderSummary("", bullets.Document(record.Bullets), profile)
	if len(messages) > 0 {
		messages[0] = header + "\n\n" + messages[0]
	}

	return messages
}

func renderPreview(preview string, profile domain.Profile) string {
	if profile.CollapsiblePreview {
		return markdown.Bold(previewTitle) + "\n" + markdown.ExpandableQuote(preview)
	}

	return markdown.Bold(previewTitle) + "\n" + markdown.Pre(preview)
}

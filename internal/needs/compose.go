package needs

import (
	"fmt"
	"strings"
)

// Submission text is collected as structured blocks and composed into the
// stored description server-side, so every published need reads the same way
// regardless of how the form was filled in.

var placeholderTokens = map[string]bool{
	"na": true, "n/a": true, "none": true,
	"-": true, "--": true, "null": true, "0": true,
}

// isPlaceholder reports whether the value is blank or one of the filler
// tokens people type to skip a required form field.
func isPlaceholder(value string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	return trimmed == "" || placeholderTokens[trimmed]
}

// cleanItems trims every field, blanks out placeholder tokens, and drops
// lines left with no content at all.
func cleanItems(items []ItemLine) []ItemLine {
	out := make([]ItemLine, 0, len(items))
	for _, item := range items {
		cleaned := ItemLine{
			Name: strings.TrimSpace(item.Name),
			Cost: strings.TrimSpace(item.Cost),
			Link: strings.TrimSpace(item.Link),
		}
		if isPlaceholder(cleaned.Name) {
			cleaned.Name = ""
		}
		if isPlaceholder(cleaned.Cost) {
			cleaned.Cost = ""
		}
		if isPlaceholder(cleaned.Link) {
			cleaned.Link = ""
		}
		if cleaned.Name == "" && cleaned.Cost == "" && cleaned.Link == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

func appendBlock(sb *strings.Builder, title, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	underline := len(title)
	if underline > 28 {
		underline = 28
	}
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", underline))
	sb.WriteString("\n")
	sb.WriteString(text)
}

// composeDescription assembles the stored description from the submission
// blocks: story, dream, prior attempts, timing, and the requested item list.
func composeDescription(params CreateParams, items []ItemLine) string {
	var sb strings.Builder

	appendBlock(&sb, "Story", params.Story)
	appendBlock(&sb, "Long-term dream", params.LongTermDream)
	appendBlock(&sb, "What has already been tried", params.TriedAlready)

	deadline := strings.TrimSpace(params.Deadline)
	urgency := strings.TrimSpace(params.Urgency)
	if deadline != "" || urgency != "" {
		var timing strings.Builder
		if deadline != "" {
			timing.WriteString("Deadline: " + deadline)
		}
		if urgency != "" {
			if timing.Len() > 0 {
				timing.WriteString("\n")
			}
			timing.WriteString("Urgency: " + urgency)
		}
		appendBlock(&sb, "Timing", timing.String())
	}

	if len(items) > 0 {
		var list strings.Builder
		for i, item := range items {
			if i > 0 {
				list.WriteString("\n")
			}
			line := fmt.Sprintf("%d. %s", i+1, item.Name)
			if item.Cost != "" {
				line += " - " + item.Cost
			}
			list.WriteString(line)
			if item.Link != "" {
				list.WriteString("\n   Link: " + item.Link)
			}
		}
		appendBlock(&sb, "Requested items", list.String())
	}

	return strings.TrimSpace(sb.String())
}

// composeSummary derives the card summary: the story when present, otherwise
// the title joined with the first substantive line of the remaining blocks.
func composeSummary(params CreateParams, description string) string {
	if story := strings.TrimSpace(params.Story); story != "" {
		return truncateWithEllipsis(story, summaryMaxLen)
	}

	title := strings.TrimSpace(params.Title)
	firstLine := firstSubstantiveLine(params.LongTermDream, params.TriedAlready)
	if firstLine == "" {
		firstLine = firstSubstantiveLine(description)
	}

	combined := title
	if firstLine != "" {
		combined = strings.TrimSpace(title + ": " + firstLine)
	}
	if combined == "" {
		combined = "Support request"
	}
	return truncateWithEllipsis(combined, summaryMaxLen)
}

var compositionHeadings = map[string]bool{
	"story":                       true,
	"long-term dream":             true,
	"what has already been tried": true,
	"timing":                      true,
	"requested items":             true,
}

// firstSubstantiveLine returns the first line across the texts that is not
// blank, not a block heading, and not an underline.
func firstSubstantiveLine(texts ...string) string {
	for _, text := range texts {
		for _, raw := range strings.Split(text, "\n") {
			line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
			if line == "" {
				continue
			}
			if compositionHeadings[strings.ToLower(line)] {
				continue
			}
			if strings.Trim(line, "-_") == "" {
				continue
			}
			return line
		}
	}
	return ""
}

func truncateWithEllipsis(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}

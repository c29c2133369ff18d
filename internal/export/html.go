// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a document as a standalone page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil || doc.Project == nil {
		return nil, fmt.Errorf("document has no project")
	}
	p := doc.Project

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(p.Name))
	sb.WriteString("    <meta name=\"generator\" content=\"l8vibe-tui\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", doc.ExportedAt.Format(time.RFC3339))
	sb.WriteString(css)
	sb.WriteString("</head>\n<body>\n    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(doc))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range doc.ChatHistory {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            Exported from l8vibe on %s\n", formatTimestamp(doc.ExportedAt))
	sb.WriteString("        </footer>\n    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(doc *Document) string {
	p := doc.Project
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", html.EscapeString(p.Name))
	if p.Description != "" {
		fmt.Fprintf(&sb, "            <p class=\"description\">%s</p>\n", html.EscapeString(p.Description))
	}
	sb.WriteString("            <div class=\"metadata\">\n")
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Owner:</strong> %s</span>\n", html.EscapeString(p.OwnerEmail))
	if p.CreatedAt != nil {
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(*p.CreatedAt))
	}
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(doc.ChatHistory))
	sb.WriteString("            </div>\n        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg model.ChatMessage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "            <div class=\"message %s-message\">\n", html.EscapeString(string(msg.Sender)))
	sb.WriteString("                <div class=\"message-header\">\n")
	fmt.Fprintf(&sb, "                    <span class=\"role-label\">%s</span>\n", html.EscapeString(formatSenderLabel(msg.Sender)))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		fmt.Fprintf(&sb, "                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(msg.Content))
	sb.WriteString("\n                </div>\n            </div>\n")
	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// formatContent escapes content and turns fenced code into pre blocks and
// blank-line separated text into paragraphs.
func formatContent(content string) string {
	content = html.EscapeString(strings.TrimSpace(content))

	var blocks []string
	last := 0
	for _, m := range codeBlockRegex.FindAllStringSubmatchIndex(content, -1) {
		blocks = append(blocks, paragraphs(content[last:m[0]])...)
		lang := content[m[2]:m[3]]
		code := strings.TrimSpace(content[m[4]:m[5]])
		label := ""
		if lang != "" {
			label = fmt.Sprintf("<div class=\"code-lang\">%s</div>", lang)
		}
		blocks = append(blocks, fmt.Sprintf("<div class=\"code-block\">%s<pre><code class=\"language-%s\">%s</code></pre></div>", label, lang, code))
		last = m[1]
	}
	blocks = append(blocks, paragraphs(content[last:])...)
	return strings.Join(blocks, "\n")
}

func paragraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		para = inlineCodeRegex.ReplaceAllString(para, "<code class=\"inline-code\">$1</code>")
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>")+"</p>")
	}
	return out
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #0f172a; color: #e2e8f0; }
        .container { max-width: 900px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 1px solid #334155; margin-bottom: 1.5rem; padding-bottom: 1rem; }
        .header h1 { margin: 0 0 .5rem; color: #a78bfa; }
        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: .9rem; color: #94a3b8; }
        .message { border-radius: 8px; margin-bottom: 1rem; padding: .75rem 1rem; background: #1e293b; }
        .user-message { border-left: 3px solid #38bdf8; }
        .ai-message { border-left: 3px solid #a78bfa; }
        .message-header { display: flex; justify-content: space-between; font-size: .85rem; color: #94a3b8; margin-bottom: .5rem; }
        .role-label { font-weight: 600; }
        .code-block { background: #020617; border-radius: 6px; margin: .5rem 0; overflow-x: auto; }
        .code-lang { font-size: .75rem; color: #64748b; padding: .25rem .75rem; border-bottom: 1px solid #1e293b; }
        pre { margin: 0; padding: .75rem; }
        .inline-code { background: #020617; padding: 0 .25rem; border-radius: 3px; }
        .footer { margin-top: 2rem; font-size: .8rem; color: #64748b; text-align: center; }
    </style>
`

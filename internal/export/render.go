package export

import (
	"fmt"
	"strings"

	"pustakam/internal/book"
)

const incompleteNotice = "This chapter has not been generated yet."

// renderMarkdown concatenates the book into one Markdown document. Chapter
// order follows the roadmap; incomplete chapters keep their slot with a
// notice so the structure of the book stays visible.
func renderMarkdown(project *book.Project) string {
	project.SortModules()
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", project.Title)
	if project.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", project.Description)
	}

	for _, module := range project.Modules {
		fmt.Fprintf(&b, "## Chapter %d: %s\n\n", module.OrderIndex+1, module.Title)
		if module.Status == book.ModuleCompleted && module.Content != "" {
			fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(module.Content))
		} else {
			fmt.Fprintf(&b, "*%s*\n\n", incompleteNotice)
		}
	}
	return b.String()
}

// renderText is the plain-text rendition: underlined headings, no markup.
func renderText(project *book.Project) string {
	project.SortModules()
	var b strings.Builder

	b.WriteString(project.Title + "\n")
	b.WriteString(strings.Repeat("=", len(project.Title)) + "\n\n")
	if project.Description != "" {
		b.WriteString(project.Description + "\n\n")
	}

	for _, module := range project.Modules {
		heading := fmt.Sprintf("Chapter %d: %s", module.OrderIndex+1, module.Title)
		b.WriteString(heading + "\n")
		b.WriteString(strings.Repeat("-", len(heading)) + "\n\n")
		if module.Status == book.ModuleCompleted && module.Content != "" {
			b.WriteString(stripMarkdown(module.Content) + "\n\n")
		} else {
			b.WriteString("[" + incompleteNotice + "]\n\n")
		}
	}
	return b.String()
}

// stripMarkdown removes the markup the generator is told to emit: heading
// markers, emphasis, and inline code. It is not a general Markdown parser.
func stripMarkdown(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "#")
		if trimmed != line {
			trimmed = strings.TrimSpace(trimmed)
		}
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.ReplaceAll(trimmed, "`", "")
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

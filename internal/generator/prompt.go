package generator

import (
	"fmt"
	"strings"

	"pustakam/internal/book"
)

func moduleSystemPrompt(wordTarget int) string {
	return fmt.Sprintf(`You are the author of a technical book. Write one complete chapter
in Markdown. Aim for roughly %d words. Start directly with the chapter body; do not
repeat the chapter title as a heading, the renderer adds it. Use ## subheadings,
worked examples, and end with a short recap. Write prose, not bullet-point outlines.`, wordTarget)
}

// modulePrompt frames one chapter request with the book's goal, the full
// roadmap, and which chapters are already written, so chapters build on one
// another instead of restarting the subject.
func modulePrompt(project *book.Project, module *book.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book: %s\n", project.Title)
	fmt.Fprintf(&b, "Learning goal: %s\n", project.Goal)
	if project.Description != "" {
		fmt.Fprintf(&b, "About the book: %s\n", project.Description)
	}

	b.WriteString("\nRoadmap:\n")
	for _, m := range project.Modules {
		marker := " "
		switch {
		case m.ID == module.ID:
			marker = ">"
		case m.Status == book.ModuleCompleted:
			marker = "x"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, m.OrderIndex+1, m.Title)
	}

	fmt.Fprintf(&b, "\nWrite chapter %d: %q.\n", module.OrderIndex+1, module.Title)
	if module.Summary != "" {
		fmt.Fprintf(&b, "Chapter summary: %s\n", module.Summary)
	}
	b.WriteString("Chapters marked x are already written; assume the reader has read them.\n")
	return b.String()
}

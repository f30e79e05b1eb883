package planner

import "fmt"

const planSystemPrompt = `You are an expert curriculum designer. Given a learning goal,
you design a book that teaches the subject from first principles to practical mastery.
Respond with a single JSON object and nothing else, using this shape:

{
  "title": "book title",
  "description": "one-paragraph summary of what the book covers",
  "modules": [
    {"title": "chapter title", "summary": "two-sentence summary of the chapter"}
  ]
}

Rules:
- Between 5 and 14 modules, ordered from fundamentals to advanced topics.
- Each module must be self-contained enough to be written as one chapter.
- Module titles are short and specific. No numbering in titles.`

func planUserPrompt(goal, audience string) string {
	prompt := fmt.Sprintf("Design a book for this learning goal: %s", goal)
	if audience != "" {
		prompt += fmt.Sprintf("\nThe intended reader: %s. Match the depth and pacing to that audience.", audience)
	}
	return prompt
}

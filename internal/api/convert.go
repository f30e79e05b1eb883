package api

import (
	"sort"

	"pustakam/internal/book"
	"pustakam/internal/bookstore"
	"pustakam/internal/textutil"
)

// FromModule converts a domain module to its wire form.
func FromModule(m *book.Module) Module {
	return Module{
		ID:           m.ID,
		Title:        m.Title,
		Summary:      m.Summary,
		OrderIndex:   m.OrderIndex,
		Status:       string(m.Status),
		Content:      m.Content,
		ErrorMessage: m.ErrorMessage,
		RetryCount:   m.RetryCount,
		WordCount:    textutil.CountWords(m.Content),
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromProject converts a domain project to its wire form. Module content is
// included only when withContent is set; listings stay small without it.
func FromProject(p *book.Project, withContent bool) Book {
	p.SortModules()
	out := Book{
		ID:          p.ID,
		Goal:        p.Goal,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status()),
		Completed:   p.CompletedCount(),
		Total:       len(p.Modules),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Modules {
		dto := FromModule(&p.Modules[i])
		if !withContent {
			dto.Content = ""
		}
		out.Modules = append(out.Modules, dto)
	}
	return out
}

// FromSettings converts settings to their masked wire form.
func FromSettings(s book.Settings) Settings {
	out := Settings{Provider: s.Provider, Model: s.Model}
	for name, key := range s.Keys {
		if key != "" {
			out.KeysSet = append(out.KeysSet, name)
		}
	}
	sort.Strings(out.KeysSet)
	return out
}

// FromBookmark converts a bookmark, resolving the module title from the book
// when available.
func FromBookmark(b *book.Bookmark, project *book.Project) Bookmark {
	out := Bookmark{
		BookID:    b.BookID,
		ModuleID:  b.ModuleID,
		Offset:    b.Offset,
		UpdatedAt: b.UpdatedAt,
	}
	if project != nil {
		if module := project.Module(b.ModuleID); module != nil {
			out.ModuleTitle = module.Title
		}
	}
	return out
}

// FromCreditEntries converts ledger rows to their wire form.
func FromCreditEntries(entries []bookstore.CreditEntry) []CreditEntry {
	out := make([]CreditEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, CreditEntry{
			BookID:    entry.BookID,
			Delta:     entry.Delta,
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}

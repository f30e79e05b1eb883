package api

import "time"

// Module is the wire/view form of one book module.
type Module struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	OrderIndex   int       `json:"orderIndex"`
	Status       string    `json:"status"`
	Content      string    `json:"content,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	RetryCount   int       `json:"retryCount,omitempty"`
	WordCount    int       `json:"wordCount,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Book is the wire/view form of one book with its modules.
type Book struct {
	ID          string    `json:"id"`
	Goal        string    `json:"goal"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
	Active      bool      `json:"active,omitempty"`
	Modules     []Module  `json:"modules,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Settings is the masked view of user settings; API keys are never shown in
// full, only which providers have one.
type Settings struct {
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	KeysSet  []string `json:"keysSet,omitempty"`
}

// Bookmark is the wire form of a reading position.
type Bookmark struct {
	BookID      string    `json:"bookId"`
	ModuleID    string    `json:"moduleId"`
	ModuleTitle string    `json:"moduleTitle,omitempty"`
	Offset      int       `json:"offset"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreditStatus is the wire form of the credit gate state.
type CreditStatus struct {
	Enabled bool          `json:"enabled"`
	Balance int64         `json:"balance"`
	History []CreditEntry `json:"history,omitempty"`
}

// CreditEntry is one ledger row.
type CreditEntry struct {
	BookID    string    `json:"bookId,omitempty"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

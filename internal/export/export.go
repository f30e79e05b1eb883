package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/logging"
	"pustakam/internal/services"
	"pustakam/internal/textutil"
)

// Format is an export output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
)

// Formats returns the supported export formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatText, FormatPDF}
}

// ParseFormat converts a string into a Format. "md" and "txt" aliases are
// accepted.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "markdown", "md":
		return FormatMarkdown, true
	case "text", "txt", "plain":
		return FormatText, true
	case "pdf":
		return FormatPDF, true
	default:
		return "", false
	}
}

func (f Format) extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	case FormatPDF:
		return ".pdf"
	default:
		return ".out"
	}
}

// Exporter writes books to files in the export directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an Exporter rooted at dir.
func New(dir string, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logging.WithComponent(logger, "export")}
}

// Export renders the book in the given format and writes it to the export
// directory, returning the written path. Books without a single completed
// module are rejected; incomplete modules in an otherwise exportable book
// are marked in the output rather than silently dropped.
func (e *Exporter) Export(project *book.Project, format Format) (string, error) {
	if project == nil {
		return "", services.Wrap(services.ErrExportFailed, "export", string(format), "no book given", nil)
	}
	if project.CompletedCount() == 0 {
		return "", services.Wrap(services.ErrExportFailed, "export", string(format),
			fmt.Sprintf("book %q has no completed modules", project.Title), nil)
	}

	var data []byte
	var err error
	switch format {
	case FormatMarkdown:
		data = []byte(renderMarkdown(project))
	case FormatText:
		data = []byte(renderText(project))
	case FormatPDF:
		data, err = renderPDF(project)
	default:
		return "", services.Wrap(services.ErrExportFailed, "export", string(format), "unknown format", nil)
	}
	if err != nil {
		return "", services.Wrap(services.ErrExportFailed, "export", string(format), "render failed", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExportFailed, "export", string(format), "create export directory", err)
	}
	path := filepath.Join(e.dir, e.fileName(project, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrExportFailed, "export", string(format), "write file", err)
	}

	e.logger.Info("book exported",
		logging.String(logging.FieldBookID, project.ID),
		logging.String("format", string(format)),
		logging.String("path", path),
		logging.Int("bytes", len(data)))
	return path, nil
}

func (e *Exporter) fileName(project *book.Project, format Format) string {
	name := textutil.SanitizeFileName(project.Title)
	if name == "" {
		name = "book-" + project.ID
	}
	return fmt.Sprintf("%s-%s%s", name, time.Now().Format("20060102-150405"), format.extension())
}

package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/iancoleman/strcase"

	"github.com/mcncl/mapdata/internal/batch"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/parser"
	"github.com/mcncl/mapdata/internal/typelister"
)

// Formatter renders command summaries as human-readable text
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a new Formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// TypeNames prints each type name as an indented JSON string, one per line
func (f *Formatter) TypeNames(names []string) error {
	for _, name := range names {
		data, err := json.MarshalIndent(name, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode type name: %w", err)
		}
		if _, err := fmt.Fprintln(f.w, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// Representative prints the full document kept for one type
func (f *Formatter) Representative(entry typelister.Entry) error {
	data, err := parser.EncodeIndent(entry.Document.Root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f.w, "# %s (%s, %d seen)\n%s\n", entry.Type, entry.Document.Path, entry.Count, data)
	return err
}

// Shaders prints one shader name per line
func (f *Formatter) Shaders(names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(f.w, name); err != nil {
			return err
		}
	}
	return nil
}

// Failures prints the failed-file summary. Nothing is printed when there
// are no failures.
func (f *Formatter) Failures(failures []batch.Failure) error {
	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(f.w, "%d file(s) failed:\n", len(failures)); err != nil {
		return err
	}
	for _, failure := range failures {
		if _, err := fmt.Fprintf(f.w, "  %s: %s\n", failure.Path, errors.UserFriendlyError(failure.Err)); err != nil {
			return err
		}
	}
	return nil
}

// RepresentativeFileName returns the file name used when dumping a type,
// e.g. "SignalStopLineRenderObject" becomes "signal_stop_line_render_object.json".
func RepresentativeFileName(typeName string) string {
	return strcase.ToSnake(typeName) + ".json"
}

// WriteRepresentatives writes every representative to dir as indented JSON
// and returns the written paths.
func WriteRepresentatives(dir string, entries []typelister.Entry) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}

	written := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := parser.EncodeIndent(entry.Document.Root)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, RepresentativeFileName(entry.Type))
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, errors.NewIOError(fmt.Sprintf("failed to write '%s'", path), err)
		}
		written = append(written, path)
	}
	return written, nil
}

package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/meysamhadeli/codemd/code_collector"
	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/meysamhadeli/codemd/constants/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseCodebase reads the blocks back out of a codebase document.
// Every level-1 heading directly followed by a fenced code block becomes one record.
// Markdown closes a fence at the first bare ``` line, which breaks on sources that embed
// fences themselves; when the markdown reading does not reproduce the document, records
// are re-split on the boundaries the collector writes between blocks. A source line "```"
// followed by an empty line, a "# " line and a fence line is still read as a boundary.
func ParseCodebase(source []byte) ([]models.FileRecord, error) {
	records, err := parseMarkdown(source)
	if err != nil {
		return nil, err
	}

	var rendered bytes.Buffer
	for _, record := range records {
		if err := code_collector.WriteRecord(&rendered, record); err != nil {
			return nil, err
		}
	}
	if bytes.Equal(rendered.Bytes(), source) {
		return records, nil
	}

	if split, ok := splitRecords(string(source)); ok {
		return split, nil
	}
	return records, nil
}

// splitRecords reads a document that consists only of collector blocks
func splitRecords(source string) ([]models.FileRecord, bool) {
	lines := strings.Split(source, "\n")
	last := len(lines) - 3
	// Every block ends with "```\n\n"
	if last < 2 || lines[last] != "```" || lines[last+1] != "" || lines[last+2] != "" {
		return nil, false
	}

	isStart := func(i int) bool {
		if !strings.HasPrefix(lines[i], "# ") || !strings.HasPrefix(lines[i+1], "```") {
			return false
		}
		return i == 0 || (i >= 2 && lines[i-1] == "" && lines[i-2] == "```")
	}
	if !isStart(0) {
		return nil, false
	}

	var starts []int
	for i := 0; i < last; i++ {
		if isStart(i) {
			starts = append(starts, i)
		}
	}

	records := make([]models.FileRecord, 0, len(starts))
	for k, start := range starts {
		end := last
		if k+1 < len(starts) {
			end = starts[k+1] - 2
		}
		if end < start+3 {
			return nil, false
		}
		records = append(records, models.FileRecord{
			RelativePath: strings.TrimPrefix(lines[start], "# "),
			Language:     models.LanguageTag(strings.TrimPrefix(lines[start+1], "```")),
			Content:      strings.Join(lines[start+2:end], "\n"),
		})
	}
	return records, true
}

func parseMarkdown(source []byte) ([]models.FileRecord, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var records []models.FileRecord
	var pendingPath string
	var hasPending bool

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() == ast.KindDocument {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			hasPending = node.Level == 1
			pendingPath = lineText(node, source)
		case *ast.FencedCodeBlock:
			if hasPending {
				records = append(records, models.FileRecord{
					RelativePath: pendingPath,
					Language:     models.LanguageTag(node.Language(source)),
					Content:      strings.TrimSuffix(lineText(node, source), "\n"),
				})
			}
			hasPending = false
		default:
			hasPending = false
		}

		// Only top-level blocks matter
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// lineText joins the raw source lines of a block node
func lineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}

// RenderCodebase prints records to w, highlighting code with chroma when color is enabled
func RenderCodebase(ctx context.Context, w io.Writer, records []models.FileRecord, theme string, color bool) error {
	for _, record := range records {
		select {
		case <-ctx.Done():
			fmt.Fprintf(w, "\n\n🔄 Output interrupted...\n")
			return ctx.Err()
		default:
		}

		header := "# " + record.RelativePath
		if !color {
			if _, err := fmt.Fprintf(w, "%s\n%s\n\n", header, record.Content); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintln(w, lipgloss.Header.Render(header))

		// Use a buffer to capture the highlight output
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, record.Content+"\n", string(record.Language), "terminal256", theme); err != nil {
			return fmt.Errorf("error highlighting %s: %w", record.RelativePath, err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	return nil
}

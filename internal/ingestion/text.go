package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bulletGlyph = regexp.MustCompile(`^[•·▪◦●]\s*`)
)

// CleanText normalizes line endings and whitespace while keeping headings, bullets
// and indentation, so line references in reviews stay meaningful.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	indent := strings.Repeat(" ", len(line)-len(trimmed))
	if strings.HasPrefix(trimmed, "#") {
		return innerSpace.ReplaceAllString(trimmed, " ")
	}
	trimmed = bulletGlyph.ReplaceAllString(trimmed, "- ")
	return indent + innerSpace.ReplaceAllString(trimmed, " ")
}

// LoadFile reads and cleans a text file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := CleanText(string(data))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return newDocument(path, text), nil
}

// LoadOptionalFile loads a file when a path is given and returns an empty text otherwise.
func LoadOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	doc, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Package yamlutil splits multi-document YAML graph files.
package yamlutil

import (
	"strings"
)

// Document is one document of a multi-document YAML stream.
type Document struct {
	// Data is the raw document without its "---" separator.
	Data []byte

	// Line is the 1-based line in the stream where Data starts.
	Line int
}

// SplitDocuments splits a multi-document YAML byte slice into individual
// documents. A separator is a line holding only "---", optionally followed
// by whitespace. Documents made of blank lines and comments are dropped.
func SplitDocuments(data []byte) []Document {
	var (
		docs  []Document
		cur   strings.Builder
		start = 1
	)

	flush := func() {
		if !isBlank(cur.String()) {
			docs = append(docs, Document{Data: []byte(cur.String()), Line: start})
		}

		cur.Reset()
	}

	lines := strings.SplitAfter(string(data), "\n")

	for i, line := range lines {
		if isSeparator(line) {
			flush()

			start = i + 2

			continue
		}

		cur.WriteString(line)
	}

	flush()

	return docs
}

// SplitDocumentsString is SplitDocuments returning only the document text.
func SplitDocumentsString(data []byte) []string {
	docs := SplitDocuments(data)
	out := make([]string, 0, len(docs))

	for _, d := range docs {
		out = append(out, string(d.Data))
	}

	return out
}

func isSeparator(line string) bool {
	rest, ok := strings.CutPrefix(line, "---")
	return ok && strings.TrimSpace(rest) == ""
}

func isBlank(doc string) bool {
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return false
		}
	}

	return true
}

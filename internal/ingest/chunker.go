// Package ingest turns source documents into embedded chunks and persists
// them through the store.
//
// The pipeline has three stages: text extraction (extract.go), paragraph
// chunking (chunker.go), and batch embedding + a single-transaction write
// (pipeline.go). A failure at any stage leaves no partial document behind.
package ingest

import "strings"

// SplitParagraphs splits text into chunks on blank lines. Windows line
// endings are normalized first so CRLF files split the same way. Each
// paragraph is trimmed; paragraphs whose trimmed length is at or below
// minChars are dropped as noise (headings, page numbers, stray fragments).
//
// Chunk order follows document order.
func SplitParagraphs(text string, minChars int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := strings.Split(text, "\n\n")

	chunks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if len(p) > minChars {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

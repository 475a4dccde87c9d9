package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText groups resume lines into chunks of at most maxChunkSize runes.
// Lines longer than a chunk are cut into windows. Each new chunk starts with
// the last overlap runes of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var (
		chunks  []string
		current []string
		size    int
		pending bool
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, "\n")
		chunks = append(chunks, chunk)

		current, size, pending = nil, 0, false
		if tail := lastRunes(chunk, overlap); tail != "" {
			current = []string{tail}
			size = utf8.RuneCountInString(tail)
		}
	}

	for _, line := range resumeLines(text) {
		for _, piece := range splitRunes(line, maxChunkSize-overlap-1) {
			n := utf8.RuneCountInString(piece)
			if size > 0 && size+n+1 > maxChunkSize {
				flush()
			}
			if size > 0 {
				size++
			}
			current = append(current, piece)
			size += n
			pending = true
		}
	}

	// A trailing overlap-only chunk carries nothing new.
	if pending {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

func resumeLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func splitRunes(s string, size int) []string {
	if size <= 0 {
		size = 1
	}
	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}

	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}

package document

import "strings"

// Chunk is one bounded span of a source document, ready for embedding.
type Chunk struct {
	Text  string
	Index int
}

// Chunker splits extracted text into overlapping spans.
type Chunker interface {
	Split(text string) []Chunk
}

// SlidingChunker splits on rune windows with overlap, snapping the cut
// to the nearest whitespace when one is close.
type SlidingChunker struct {
	Size    int
	Overlap int
}

func NewSlidingChunker(size, overlap int) *SlidingChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &SlidingChunker{Size: size, Overlap: overlap}
}

func (c *SlidingChunker) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []Chunk
	step := c.Size - c.Overlap
	for start := 0; start < len(runes); start += step {
		end := start + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		cut := end
		// prefer breaking at whitespace within the last tenth of the window
		if end < len(runes) {
			for i := end; i > end-c.Size/10 && i > start; i-- {
				if runes[i-1] == ' ' || runes[i-1] == '\n' {
					cut = i
					break
				}
			}
		}
		piece := strings.TrimSpace(string(runes[start:cut]))
		if piece != "" {
			chunks = append(chunks, Chunk{Text: piece, Index: len(chunks)})
		}
		if cut >= len(runes) {
			break
		}
	}
	return chunks
}

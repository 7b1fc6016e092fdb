package chunker

import "strings"

// Default separator preference: paragraph breaks, then line breaks,
// then sentence boundaries, then words, then hard character splits.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text into fixed-size chunks with overlap, preferring
// to break at natural boundaries.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split breaks text into chunks of at most chunkSize characters.
// Consecutive chunks share roughly overlap characters so no statement
// is stranded at a boundary.
func (s *Splitter) Split(text string) []string {
	pieces := s.split(strings.TrimSpace(text), s.separators)
	chunks := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if t := strings.TrimSpace(p); t != "" {
			chunks = append(chunks, t)
		}
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	// First separator actually present in the text wins; the empty
	// separator always matches and forces a hard split.
	sep := ""
	rest := []string{}
	for i, cand := range separators {
		if cand == "" || strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	var chunks []string
	var window []string
	length := 0

	flush := func() {
		if len(window) > 0 {
			chunks = append(chunks, strings.Join(window, ""))
		}
	}

	for _, piece := range splitKeep(text, sep) {
		if len(piece) > s.chunkSize {
			// Oversized piece: flush what we have and recurse with
			// the finer separators.
			flush()
			window, length = nil, 0
			chunks = append(chunks, s.split(piece, rest)...)
			continue
		}
		if length+len(piece) > s.chunkSize {
			flush()
			// Retain trailing pieces as overlap for the next chunk,
			// dropping enough that the new piece still fits.
			for len(window) > 0 && (length > s.overlap || length+len(piece) > s.chunkSize) {
				length -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		length += len(piece)
	}
	flush()

	return chunks
}

// hardSplit cuts text into chunkSize windows advancing by
// chunkSize-overlap, aligned to rune boundaries.
func (s *Splitter) hardSplit(text string) []string {
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitKeep splits on sep, keeping the separator attached to the
// preceding piece so joins reproduce the original text.
func splitKeep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

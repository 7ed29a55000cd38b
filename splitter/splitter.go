package splitter

import "errors"

// ErrInvalidConfig is returned when the chunk size or overlap is
// non-positive or the overlap is not smaller than the chunk size.
var ErrInvalidConfig = errors.New("chunk overlap must be positive and smaller than chunk size")

// Splitter cuts text into chunks of at most ChunkSize runes where each
// chunk starts ChunkOverlap runes before the previous one ends. Chunks are
// contiguous spans of the input, so no characters are lost or rewritten.
type Splitter struct {
	options Options
}

func New(opts ...Option) (*Splitter, error) {
	options := NewOptions(opts...)

	if options.ChunkSize <= 0 ||
		options.ChunkOverlap <= 0 ||
		options.ChunkOverlap >= options.ChunkSize {
		return nil, ErrInvalidConfig
	}

	return &Splitter{options: options}, nil
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)

	n := len(runes)
	if n == 0 {
		return nil
	}

	if n <= s.options.ChunkSize {
		return []string{text}
	}

	// Cuts further back than this would erode the step below the overlap.
	tolerance := (s.options.ChunkSize - s.options.ChunkOverlap) / 2

	chunks := []string{}
	start := 0

	for {
		end := start + s.options.ChunkSize
		if end >= n {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		if cut := boundary(runes, end, tolerance); cut > start {
			end = cut
		}

		chunks = append(chunks, string(runes[start:end]))

		start = end - s.options.ChunkOverlap
	}
}

// boundary scans backward from end for the most natural break within the
// tolerance window. Paragraph breaks beat line breaks beat sentence ends
// beat word breaks; within a rank the latest position wins. Returns the
// cut position after the break, or 0 when the window holds no break.
func boundary(runes []rune, end int, tolerance int) int {
	low := end - tolerance
	if low < 0 {
		low = 0
	}

	best := 0
	bestRank := 0

	for i := end - 1; i >= low; i-- {
		r := runes[i]

		var rank int
		switch {
		case r == '\n' && i > 0 && runes[i-1] == '\n':
			rank = 4
		case r == '\n':
			rank = 3
		case (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ':
			rank = 2
		case r == ' ':
			rank = 1
		default:
			continue
		}

		if rank > bestRank {
			bestRank = rank
			best = i + 1
		}

		if bestRank == 4 {
			break
		}
	}

	return best
}

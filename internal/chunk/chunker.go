package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// defaultMaxChars matches the config default so a zero-value Config still
// produces bounded windows.
const defaultMaxChars = 1200

// Config bounds the text windows the chunker produces. Overlap 0 makes the
// windows strictly non-overlapping; a positive overlap repeats that many
// trailing characters at the start of the next window.
type Config struct {
	MaxChars int
	Overlap  int
}

// Chunker partitions long email bodies into ordered windows so the synthesis
// collaborator never sees more than MaxChars at a time. Windows are indexed
// contiguously from 0 in body order.
type Chunker struct {
	config Config
}

// New creates a chunker with the given bounds. A non-positive MaxChars falls
// back to the default; an overlap outside [0, MaxChars) is dropped to 0.
func New(config Config) *Chunker {
	if config.MaxChars <= 0 {
		config.MaxChars = defaultMaxChars
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChars {
		config.Overlap = 0
	}
	return &Chunker{config: config}
}

// Split windows the event's body text into chunks tagged with the parent
// event id. Short bodies produce a single chunk; an empty body produces none.
func (c *Chunker) Split(event *domain.Event) []domain.Chunk {
	return c.splitText(event.EventID, event.Body)
}

// SplitRaw windows the event's raw text instead of the parsed body. Used for
// extraction over non-email channels where the raw block is the unit.
func (c *Chunker) SplitRaw(event *domain.Event) []domain.Chunk {
	return c.splitText(event.EventID, event.RawText)
}

func (c *Chunker) splitText(eventID, text string) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	index := 0
	n := len(text)

	for start < n {
		end := start + c.config.MaxChars
		if end > n {
			end = n
		} else {
			// Never cut a multi-byte rune at the window edge.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + 1
				for end < n && !utf8.RuneStart(text[end]) {
					end++
				}
			}
		}

		part := strings.TrimSpace(text[start:end])
		if part != "" {
			chunks = append(chunks, domain.Chunk{
				ParentEventID: eventID,
				ChunkIndex:    index,
				Text:          part,
			})
			index++
		}

		if end >= n {
			break
		}
		start = end - c.config.Overlap
		if start < 0 {
			start = 0
		}
		for start < n && !utf8.RuneStart(text[start]) {
			start++
		}
	}

	return chunks
}

package parse

import (
	"regexp"
	"strings"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

var (
	slackBlockSplitRE = regexp.MustCompile(`(?m)^\s*---\s*$`)
	slackRootRE       = regexp.MustCompile(`^\[(\d{2}:\d{2})\]\s*([^:]+?):\s*(.*)\s*$`)
)

// SlackParser splits a chat export into one Event per "---" delimited block.
// The first non-indented line matching "[HH:MM] Name: msg" is the root
// message; everything after it inside the block is reply context, kept
// verbatim in order. Blocks are bounded by construction, so no chunking.
type SlackParser struct{}

// NewSlackParser creates a slack log parser.
func NewSlackParser() *SlackParser {
	return &SlackParser{}
}

// Parse splits content on the literal block separator.
func (p *SlackParser) Parse(content, sourceFile string) ([]domain.Event, error) {
	var events []domain.Event
	for _, block := range slackBlockSplitRE.Split(content, -1) {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		rootIdx := -1
		var timeHM, author, root string

		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			// Root line carries no leading whitespace; replies are indented.
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				continue
			}
			if m := slackRootRE.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				timeHM = m[1]
				author = strings.TrimSpace(m[2])
				root = strings.TrimSpace(m[3])
				rootIdx = i
				break
			}
		}

		if rootIdx < 0 {
			continue
		}

		replies := strings.TrimRight(strings.Join(lines[rootIdx+1:], "\n"), "\n")

		events = append(events, domain.Event{
			EventID:    SlackEventID(timeHM, author),
			Channel:    domain.ChannelSlack,
			SourceFile: sourceFile,
			RawText:    strings.TrimSpace(block),
			Timestamp:  timeHM,
			Author:     author,
			Root:       root,
			Replies:    replies,
		})
	}
	return events, nil
}

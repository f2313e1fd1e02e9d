package parse

import (
	"regexp"
	"strings"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

var (
	emailSplitRE   = regexp.MustCompile(`(?m)(^\s*Subject:\s*)`)
	emailSubjectRE = regexp.MustCompile(`(?m)^\s*Subject:\s*(.+?)\s*$`)
	emailFromRE    = regexp.MustCompile(`(?m)^\s*From:\s*(.+?)\s*$`)

	subjectLineRE = regexp.MustCompile(`(?m)^\s*Subject:.*\n?`)
	fromLineRE    = regexp.MustCompile(`(?m)^\s*From:.*\n?`)
)

// EmailParser splits a mail dump into one Event per thread. Threads open with
// a "Subject:" header line; "From:" is extracted when present. The remaining
// body text is what the chunker later windows.
type EmailParser struct{}

// NewEmailParser creates an email thread parser.
func NewEmailParser() *EmailParser {
	return &EmailParser{}
}

// Parse splits content on Subject: thread boundaries.
func (p *EmailParser) Parse(content, sourceFile string) ([]domain.Event, error) {
	var events []domain.Event
	for _, block := range splitBefore(content, emailSplitRE) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		sm := emailSubjectRE.FindStringSubmatch(block)
		if sm == nil {
			continue
		}
		subject := strings.TrimSpace(sm[1])

		from := ""
		if fm := emailFromRE.FindStringSubmatch(block); fm != nil {
			from = strings.TrimSpace(fm[1])
		}

		// Body keeps the thread text minus the first Subject/From header lines.
		body := replaceFirst(block, subjectLineRE)
		body = strings.TrimSpace(replaceFirst(body, fromLineRE))

		events = append(events, domain.Event{
			EventID:    EmailEventID(subject),
			Channel:    domain.ChannelEmail,
			SourceFile: sourceFile,
			RawText:    block,
			From:       from,
			Subject:    subject,
			Body:       body,
		})
	}
	return events, nil
}

// splitBefore splits s at every match of re, keeping the match with the
// following segment (lookahead-style split).
func splitBefore(s string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return []string{s}
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, s[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, s[prev:])
	return parts
}

// replaceFirst removes the first match of re from s.
func replaceFirst(s string, re *regexp.Regexp) string {
	if loc := re.FindStringIndex(s); loc != nil {
		return s[:loc[0]] + s[loc[1]:]
	}
	return s
}

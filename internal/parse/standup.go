package parse

import (
	"regexp"
	"strings"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

var (
	standupHeaderRE    = regexp.MustCompile(`(?m)^\s*STANDUP:\s*(.+?)\s*$`)
	standupSplitRE     = regexp.MustCompile(`(?m)(^\s*STANDUP:\s*.+?\s*$)`)
	standupDateRE      = regexp.MustCompile(`(?m)^\s*DATE:\s*([0-9]{4}-[0-9]{2}-[0-9]{2})\s*$`)
	standupDashSplitRE = regexp.MustCompile(`(?m)^\s*---\s*$`)

	standupMDHeaderRE = regexp.MustCompile(`(?m)^#\s*Daily Standup\s*[–-]\s*(.+?)\s*$`)
	standupMDSplitRE  = regexp.MustCompile(`(?m)(^#\s*Daily Standup\s*[–-]\s*)`)
)

// markdown section titles mapped to canonical section keys
var mdSectionTitles = map[string]string{
	domain.SectionDone:       "Done",
	domain.SectionInProgress: "In Progress",
	domain.SectionBlockers:   "Blockers",
	domain.SectionRisks:      "Risks / Concerns",
	domain.SectionQuestions:  "Questions",
}

// StandupParser splits standup notes into one Event per block. Two layouts
// are recognized: the plain "STANDUP: team" header with upper-case section
// labels, and the markdown "# Daily Standup – team" fallback. A recognized
// label with no following bullets yields an empty section, never an error.
type StandupParser struct{}

// NewStandupParser creates a standup notes parser.
func NewStandupParser() *StandupParser {
	return &StandupParser{}
}

// Parse dispatches to the plain or markdown layout by whichever header is
// present (plain wins when both appear).
func (p *StandupParser) Parse(content, sourceFile string) ([]domain.Event, error) {
	if standupHeaderRE.MatchString(content) {
		return p.parsePlain(content, sourceFile), nil
	}
	if standupMDHeaderRE.MatchString(content) {
		return p.parseMarkdown(content, sourceFile), nil
	}
	return nil, nil
}

func (p *StandupParser) parsePlain(content, sourceFile string) []domain.Event {
	var events []domain.Event
	for _, block := range splitBefore(content, standupSplitRE) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		// A trailing "---" separator ends the block.
		if parts := standupDashSplitRE.Split(block, -1); len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
			block = strings.TrimSpace(parts[0])
		}

		m := standupHeaderRE.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		team := strings.TrimSpace(m[1])

		date := ""
		if dm := standupDateRE.FindStringSubmatch(block); dm != nil {
			date = dm[1]
		}

		events = append(events, domain.Event{
			EventID:    StandupEventID(date, team),
			Channel:    domain.ChannelStandup,
			SourceFile: sourceFile,
			RawText:    block,
			Team:       team,
			Date:       date,
			Sections:   parsePlainSections(block),
		})
	}
	return events
}

// parsePlainSections scans lines, switching the current section on each
// recognized "LABEL:" line and collecting bullet values until the next label.
func parsePlainSections(block string) map[string][]string {
	buf := make(map[string][]string, len(domain.SectionOrder))
	cur := ""

	for _, line := range strings.Split(block, "\n") {
		if key, ok := sectionLabel(line); ok {
			cur = key
			continue
		}
		if cur == "" {
			continue
		}
		buf[cur] = append(buf[cur], line)
	}

	sections := make(map[string][]string, len(domain.SectionOrder))
	for _, key := range domain.SectionOrder {
		sections[key] = bulletsFromLines(buf[key])
	}
	return sections
}

func sectionLabel(line string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(line))
	s = strings.ReplaceAll(s, " ", "_")
	for _, key := range domain.SectionOrder {
		if s == key+":" {
			return key, true
		}
	}
	return "", false
}

func (p *StandupParser) parseMarkdown(content, sourceFile string) []domain.Event {
	m0 := standupMDHeaderRE.FindStringIndex(content)
	if m0 == nil {
		return nil
	}
	content = content[m0[0]:]

	var events []domain.Event
	for _, block := range splitBefore(content, standupMDSplitRE) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		m := standupMDHeaderRE.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		team := strings.TrimSpace(m[1])

		sections := make(map[string][]string, len(domain.SectionOrder))
		for _, key := range domain.SectionOrder {
			body := mdSectionBody(block, mdSectionTitles[key])
			sections[key] = bulletsFromLines(strings.Split(body, "\n"))
		}

		// Markdown standups carry no DATE line.
		events = append(events, domain.Event{
			EventID:    StandupEventID("", team),
			Channel:    domain.ChannelStandup,
			SourceFile: sourceFile,
			RawText:    block,
			Team:       team,
			Sections:   sections,
		})
	}
	return events
}

// mdSectionBody returns the text between "## <title>" and the next "##"
// heading (or block end).
func mdSectionBody(block, title string) string {
	rx := regexp.MustCompile(`(?ms)^##\s*` + regexp.QuoteMeta(title) + `\s*\n(.*?)(?:^##\s|\z)`)
	if mm := rx.FindStringSubmatch(block); mm != nil {
		return strings.TrimSpace(mm[1])
	}
	return ""
}

// bulletsFromLines keeps "- " and "• " bullet lines, stripped of their
// markers, dropping empty and placeholder values.
func bulletsFromLines(lines []string) []string {
	out := []string{}
	for _, raw := range lines {
		s := strings.TrimSpace(raw)
		var val string
		switch {
		case strings.HasPrefix(s, "- "):
			val = strings.TrimSpace(s[2:])
		case strings.HasPrefix(s, "• "):
			val = strings.TrimSpace(strings.TrimPrefix(s, "• "))
		default:
			continue
		}
		if val == "" || isPlaceholder(val) {
			continue
		}
		out = append(out, val)
	}
	return out
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n/a", "na", "-":
		return true
	}
	return false
}

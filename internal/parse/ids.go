package parse

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonSlugRE    = regexp.MustCompile(`[^a-z0-9]+`)
	multiUnderRE = regexp.MustCompile(`_+`)
	nonWordRE    = regexp.MustCompile(`[^\w]+`)
)

// slug lowercases s and collapses everything non-alphanumeric to single
// underscores, for the team part of standup event ids.
func slug(s string) string {
	sl := strings.ToLower(strings.TrimSpace(s))
	sl = nonSlugRE.ReplaceAllString(sl, "_")
	sl = strings.Trim(multiUnderRE.ReplaceAllString(sl, "_"), "_")
	if sl == "" {
		return "unknown"
	}
	return sl
}

// nameToken keeps the author name readable but safe for an id: spaces become
// underscores, anything outside word characters is dropped.
func nameToken(name string) string {
	n := whitespaceRE.ReplaceAllString(strings.TrimSpace(name), "_")
	n = nonWordRE.ReplaceAllString(n, "")
	if n == "" {
		return "Unknown"
	}
	return n
}

// normalizeWhitespace collapses runs of whitespace (including newlines) into
// single spaces.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// StandupEventID derives the stable id for a standup block.
func StandupEventID(date, team string) string {
	d := strings.TrimSpace(date)
	if d == "" {
		d = "no_date"
	}
	return "standup_" + d + ":" + slug(team)
}

// SlackEventID derives the stable id for a slack block root message.
func SlackEventID(timeHM, author string) string {
	return "slack_" + timeHM + ":" + nameToken(author)
}

// EmailEventID derives the stable id for an email thread, keeping the subject
// human-readable with normalized whitespace.
func EmailEventID(subject string) string {
	s := normalizeWhitespace(subject)
	if s == "" {
		return "email_no_subject"
	}
	return "email_" + s
}

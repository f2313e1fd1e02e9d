package classify

import (
	"errors"
	"regexp"
	"strings"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// ErrUnclassified is returned when no channel signature matches the content.
// Callers skip the file with a warning; it is never fatal to the run.
var ErrUnclassified = errors.New("no channel signature matched")

var (
	standupHeaderRE   = regexp.MustCompile(`(?m)^\s*STANDUP:\s*(.+?)\s*$`)
	standupMDHeaderRE = regexp.MustCompile(`(?m)^#\s*Daily Standup\s*[–-]\s*.+$`)
	emailSubjectRE    = regexp.MustCompile(`(?m)^\s*Subject:\s*(.+?)\s*$`)
	slackRootRE       = regexp.MustCompile(`^\[(\d{2}:\d{2})\]\s*([^:]+?):\s*(.*)\s*$`)
)

// Classifier decides the channel type of a document from its content,
// never from its filename.
type Classifier struct{}

// New creates a content-signature classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify inspects the content and returns its channel. Detection order is
// standup, then email, then slack, so a standup pasted into a mail thread
// dump still lands on the more specific parser.
func (c *Classifier) Classify(content string) (domain.Channel, error) {
	switch {
	case looksLikeStandup(content):
		return domain.ChannelStandup, nil
	case looksLikeEmail(content):
		return domain.ChannelEmail, nil
	case looksLikeSlack(content):
		return domain.ChannelSlack, nil
	}
	return "", ErrUnclassified
}

func looksLikeStandup(content string) bool {
	return content != "" && (standupHeaderRE.MatchString(content) || standupMDHeaderRE.MatchString(content))
}

func looksLikeEmail(content string) bool {
	return content != "" && emailSubjectRE.MatchString(content)
}

func looksLikeSlack(content string) bool {
	if content == "" {
		return false
	}
	// At least one non-indented root line like "[09:12] Nadia: ..."
	for _, line := range strings.Split(content, "\n") {
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if slackRootRE.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

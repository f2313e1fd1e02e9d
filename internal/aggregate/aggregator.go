package aggregate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/extract"
)

const (
	maxJoinedBullets = 5
	excerptLimit     = 240

	maxStandupNotes = 3
	maxSlackNotes   = 4
	maxEmailNotes   = 5
)

// Scorer ranks a chunk candidate's text under the policy table so the
// aggregator can pick the representative chunk deterministically.
// The policy engine satisfies this.
type Scorer interface {
	Score(text string) (domain.Priority, string)
}

// Aggregator collapses each Event (and its chunks, for email threads) into
// exactly one Item. Hints only add notes and tags; every deterministic field
// of the description comes from the parsers.
type Aggregator struct {
	scorer Scorer
	log    *zap.Logger
}

// New creates an aggregator over the given scorer.
func New(scorer Scorer, log *zap.Logger) *Aggregator {
	return &Aggregator{
		scorer: scorer,
		log:    log,
	}
}

// Build produces one Item per event, in event order. chunksByEvent carries
// the email chunk windows keyed by event id; hints is the merger's output and
// may be nil or sparse.
func (a *Aggregator) Build(events []domain.Event, chunksByEvent map[string][]domain.Chunk, hints map[string]*extract.Hints) []*domain.Item {
	items := make([]*domain.Item, 0, len(events))
	seen := make(map[string]bool, len(events))

	for i := range events {
		event := &events[i]

		// Hard rule: one Item per event id.
		if seen[event.EventID] {
			a.log.Debug("Dropping duplicate event", zap.String("event_id", event.EventID))
			continue
		}
		seen[event.EventID] = true

		var item *domain.Item
		switch event.Channel {
		case domain.ChannelEmail:
			item = a.buildEmail(event, chunksByEvent[event.EventID], hints[event.EventID])
		case domain.ChannelSlack:
			item = a.buildSlack(event, hints[event.EventID])
		case domain.ChannelStandup:
			item = a.buildStandup(event, hints[event.EventID])
		default:
			a.log.Warn("Skipping event with unknown channel",
				zap.String("event_id", event.EventID),
				zap.String("channel", string(event.Channel)))
			continue
		}

		items = append(items, item)
	}

	return items
}

// buildEmail merges the thread's chunk candidates: categories are unioned
// across chunks, and the excerpt comes from the chunk whose matched category
// is most severe, earliest chunk index winning ties.
func (a *Aggregator) buildEmail(event *domain.Event, chunks []domain.Chunk, h *extract.Hints) *domain.Item {
	item := a.newItem(event)

	bestIdx := 0
	bestOrdinal := domain.PriorityP2.Ordinal() + 1
	for _, ch := range chunks {
		priority, category := a.scorer.Score(ch.Text)
		item.AddCategory(category)
		if priority.Ordinal() < bestOrdinal {
			bestOrdinal = priority.Ordinal()
			bestIdx = ch.ChunkIndex
		}
	}
	if len(chunks) > 0 {
		item.SourceRef.ChunkIndex = bestIdx
	}

	seen := newDedupe()
	seen.mark(event.Subject)

	notes := collectNotes(h, seen, maxEmailNotes, "subject:")

	title := "EMAIL"
	if event.Subject != "" {
		title = "EMAIL: " + event.Subject
	}
	parts := []string{title}
	if event.From != "" {
		parts = append(parts, "FROM: "+event.From)
	}
	if len(notes) > 0 {
		parts = append(parts, "NOTES: "+joinBullets(notes, maxEmailNotes))
	} else if len(chunks) > 0 {
		if excerpt := makeExcerpt(chunks[indexOfChunk(chunks, bestIdx)].Text); excerpt != "" {
			parts = append(parts, "EXCERPT: "+excerpt)
		}
	}

	a.finishItem(item, parts, h)
	return item
}

func (a *Aggregator) buildSlack(event *domain.Event, h *extract.Hints) *domain.Item {
	item := a.newItem(event)

	seen := newDedupe()
	seen.mark(event.Root)

	notes := collectNotes(h, seen, maxSlackNotes, "slack", "[")

	parts := []string{fmt.Sprintf("SLACK: [%s] %s", event.Timestamp, event.Author)}
	if event.Root != "" {
		parts = append(parts, "ROOT: "+event.Root)
	}
	if len(notes) > 0 {
		parts = append(parts, "NOTES: "+joinBullets(notes, maxSlackNotes))
	}

	a.finishItem(item, parts, h)
	return item
}

func (a *Aggregator) buildStandup(event *domain.Event, h *extract.Hints) *domain.Item {
	item := a.newItem(event)

	seen := newDedupe()

	title := "STANDUP: " + event.Team
	if event.Date != "" {
		title += " (" + event.Date + ")"
	}
	parts := []string{title}

	// Report order puts actionable sections before DONE.
	for _, key := range []string{domain.SectionInProgress, domain.SectionBlockers, domain.SectionRisks, domain.SectionQuestions, domain.SectionDone} {
		values := seen.filter(event.Sections[key])
		if len(values) > 0 {
			parts = append(parts, key+": "+joinBullets(values, maxJoinedBullets))
		}
	}

	notes := collectNotes(h, seen, maxStandupNotes, "standup:", "standup ")
	if len(notes) > 0 {
		parts = append(parts, "NOTES: "+joinBullets(notes, maxStandupNotes))
	}

	a.finishItem(item, parts, h)
	return item
}

func (a *Aggregator) newItem(event *domain.Event) *domain.Item {
	return &domain.Item{
		ItemID:  event.EventID,
		Channel: event.Channel,
		SourceRef: domain.SourceRef{
			EventID:    event.EventID,
			SourceFile: event.SourceFile,
		},
	}
}

func (a *Aggregator) finishItem(item *domain.Item, parts []string, h *extract.Hints) {
	item.Description = strings.Join(parts, " | ")
	if h != nil {
		for _, tag := range h.Tags {
			item.AddCategory(tag)
		}
		if h.Priority.Valid() {
			item.SuggestedPriority = h.Priority
		}
	}
}

// collectNotes filters hint notes through the dedupe set, skipping notes that
// merely echo a deterministic header (any of the given prefixes).
func collectNotes(h *extract.Hints, seen *dedupe, max int, skipPrefixes ...string) []string {
	if h == nil {
		return nil
	}
	var notes []string
	for _, note := range h.Notes {
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		key := normForDedupe(note)
		if key == "" || seen.has(key) {
			continue
		}
		if hasAnyPrefix(key, skipPrefixes) {
			continue
		}
		seen.add(key)
		notes = append(notes, note)
		if len(notes) >= max {
			break
		}
	}
	return notes
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func indexOfChunk(chunks []domain.Chunk, chunkIndex int) int {
	for i, ch := range chunks {
		if ch.ChunkIndex == chunkIndex {
			return i
		}
	}
	return 0
}

// joinBullets joins up to max values with "; ", noting how many were elided.
func joinBullets(values []string, max int) string {
	var kept []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	if len(kept) > max {
		extra := len(kept) - max
		kept = append(kept[:max], fmt.Sprintf("(+%d more)", extra))
	}
	return strings.Join(kept, "; ")
}

var (
	wsRE    = regexp.MustCompile(`\s+`)
	punctRE = regexp.MustCompile(`[^\w\s:+#-]`)
)

// normForDedupe lowercases, collapses whitespace, and strips punctuation so
// near-identical notes collapse to one.
func normForDedupe(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = wsRE.ReplaceAllString(s, " ")
	return punctRE.ReplaceAllString(s, "")
}

func makeExcerpt(text string) string {
	s := wsRE.ReplaceAllString(text, " ")
	if len(s) > excerptLimit {
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}

type dedupe struct {
	keys map[string]bool
}

func newDedupe() *dedupe {
	return &dedupe{keys: make(map[string]bool)}
}

func (d *dedupe) has(key string) bool { return d.keys[key] }
func (d *dedupe) add(key string)      { d.keys[key] = true }

func (d *dedupe) mark(value string) {
	if key := normForDedupe(value); key != "" {
		d.keys[key] = true
	}
}

// filter returns the values whose normalized form has not been seen yet,
// marking each as seen.
func (d *dedupe) filter(values []string) []string {
	var out []string
	for _, v := range values {
		key := normForDedupe(v)
		if key == "" || d.keys[key] {
			continue
		}
		d.keys[key] = true
		out = append(out, v)
	}
	return out
}

package aggregate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/extract"
	"github.com/NadezhdaSmurova/TaskDigest/internal/policy"
)

func newTestAggregator() *Aggregator {
	return New(policy.NewEngine(policy.DefaultTable(), zap.NewNop()), zap.NewNop())
}

func emailEvent() domain.Event {
	return domain.Event{
		EventID:    "email_Settlement mismatch",
		Channel:    domain.ChannelEmail,
		SourceFile: "emails.txt",
		Subject:    "Settlement mismatch",
		From:       "finance@acme.test",
		Body:       "the ledger totals do not match the settlement report",
	}
}

func TestAggregator_OneItemPerEvent(t *testing.T) {
	a := newTestAggregator()

	events := []domain.Event{emailEvent(), emailEvent()}
	items := a.Build(events, nil, nil)

	require.Len(t, items, 1)
	assert.Equal(t, "email_Settlement mismatch", items[0].ItemID)
}

func TestAggregator_EmailCategoryUnionAndBestChunk(t *testing.T) {
	a := newTestAggregator()

	event := emailEvent()
	chunks := []domain.Chunk{
		{ParentEventID: event.EventID, ChunkIndex: 0, Text: "routine planning notes and a fee breakdown proposal"},
		{ParentEventID: event.EventID, ChunkIndex: 1, Text: "settlement mismatch found, payout ledger does not match"},
		{ParentEventID: event.EventID, ChunkIndex: 2, Text: "latency spiking on the settlement API"},
	}

	items := a.Build([]domain.Event{event}, map[string][]domain.Chunk{event.EventID: chunks}, nil)
	require.Len(t, items, 1)

	item := items[0]
	// Categories union across all chunks.
	assert.True(t, item.HasCategory("planning"))
	assert.True(t, item.HasCategory("financial-mismatch"))
	assert.True(t, item.HasCategory("sla-degradation"))
	// Source ref points at the most severe chunk.
	assert.Equal(t, 1, item.SourceRef.ChunkIndex)
	assert.Equal(t, "emails.txt", item.SourceRef.SourceFile)
	assert.Equal(t, event.EventID, item.SourceRef.EventID)
	// No hints: the representative chunk supplies the excerpt.
	assert.Contains(t, item.Description, "EXCERPT: settlement mismatch found")
}

func TestAggregator_EmailTieBreakEarliestChunk(t *testing.T) {
	a := newTestAggregator()

	event := emailEvent()
	chunks := []domain.Chunk{
		{ParentEventID: event.EventID, ChunkIndex: 0, Text: "latency spiking on checkout"},
		{ParentEventID: event.EventID, ChunkIndex: 1, Text: "latency still spiking downstream"},
	}

	items := a.Build([]domain.Event{event}, map[string][]domain.Chunk{event.EventID: chunks}, nil)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].SourceRef.ChunkIndex)
}

func TestAggregator_EmailHintsAddOnly(t *testing.T) {
	a := newTestAggregator()

	event := emailEvent()
	hints := map[string]*extract.Hints{
		event.EventID: {
			Notes:    []string{"Settlement mismatch", "batch 2026-08-27 short by 4,200 EUR"},
			Tags:     []string{"financial"},
			Priority: domain.PriorityP1,
		},
	}

	items := a.Build([]domain.Event{event}, nil, hints)
	require.Len(t, items, 1)

	item := items[0]
	// The deterministic header survives untouched.
	assert.True(t, strings.HasPrefix(item.Description, "EMAIL: Settlement mismatch | FROM: finance@acme.test"))
	// The note echoing the subject is dropped, the new one is kept.
	assert.Contains(t, item.Description, "NOTES: batch 2026-08-27 short by 4,200 EUR")
	assert.True(t, item.HasCategory("financial"))
	assert.Equal(t, domain.PriorityP1, item.SuggestedPriority)
}

func TestAggregator_Slack(t *testing.T) {
	a := newTestAggregator()

	event := domain.Event{
		EventID:    "slack_09:12:Nadia",
		Channel:    domain.ChannelSlack,
		SourceFile: "chat.txt",
		Timestamp:  "09:12",
		Author:     "Nadia",
		Root:       "payout batch looks stuck",
	}
	hints := map[string]*extract.Hints{
		event.EventID: {Notes: []string{"payout batch looks stuck", "retries exhausted after 3 attempts"}},
	}

	items := a.Build([]domain.Event{event}, nil, hints)
	require.Len(t, items, 1)

	desc := items[0].Description
	assert.True(t, strings.HasPrefix(desc, "SLACK: [09:12] Nadia | ROOT: payout batch looks stuck"))
	// The note duplicating the root is deduped.
	assert.Contains(t, desc, "NOTES: retries exhausted after 3 attempts")
	assert.Equal(t, 1, strings.Count(desc, "payout batch looks stuck"))
}

func TestAggregator_StandupSectionOrderAndElision(t *testing.T) {
	a := newTestAggregator()

	event := domain.Event{
		EventID:    "standup_2026-08-28:payments",
		Channel:    domain.ChannelStandup,
		SourceFile: "standup.txt",
		Team:       "Payments",
		Date:       "2026-08-28",
		Sections: map[string][]string{
			domain.SectionDone:       {"shipped retry worker"},
			domain.SectionInProgress: {"chargeback export"},
			domain.SectionBlockers:   {"b1", "b2", "b3", "b4", "b5", "b6", "b7"},
			domain.SectionRisks:      nil,
			domain.SectionQuestions:  nil,
		},
	}

	items := a.Build([]domain.Event{event}, nil, nil)
	require.Len(t, items, 1)

	desc := items[0].Description
	assert.True(t, strings.HasPrefix(desc, "STANDUP: Payments (2026-08-28)"))
	// Actionable sections come before DONE.
	assert.Less(t, strings.Index(desc, "BLOCKERS:"), strings.Index(desc, "DONE:"))
	// Overflowing bullets are elided with a count.
	assert.Contains(t, desc, "(+2 more)")
	assert.NotContains(t, desc, "b6")
}

func TestAggregator_UnknownChannelSkipped(t *testing.T) {
	a := newTestAggregator()

	events := []domain.Event{{EventID: "x", Channel: domain.Channel("pager")}}
	assert.Empty(t, a.Build(events, nil, nil))
}

func TestJoinBullets(t *testing.T) {
	assert.Equal(t, "a; b", joinBullets([]string{"a", " b "}, 5))
	assert.Equal(t, "a; b; (+2 more)", joinBullets([]string{"a", "b", "c", "d"}, 2))
	assert.Empty(t, joinBullets([]string{"", "  "}, 3))
}

func TestMakeExcerpt_RuneSafe(t *testing.T) {
	long := strings.Repeat("задержка выплат ", 30)
	excerpt := makeExcerpt(long)

	assert.LessOrEqual(t, len(excerpt), 240)
	assert.True(t, utf8.ValidString(excerpt))
}

func TestNormForDedupe(t *testing.T) {
	assert.Equal(t, normForDedupe("Payout  Batch stuck!"), normForDedupe("payout batch stuck"))
}

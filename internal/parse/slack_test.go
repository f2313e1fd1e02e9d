package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

func TestSlackParser_Blocks(t *testing.T) {
	p := NewSlackParser()

	content := `[09:12] Nadia Volkova: payout batch for DE merchants looks stuck
    ↳ [09:14] Omar: checking the queue now
    ↳ [09:20] Omar: retries exhausted, escalating
---
[10:01] Lena: reminder: planning doc review tomorrow
`

	events, err := p.Parse(content, "chat.txt")
	assert.NoError(t, err)
	assert.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "slack_09:12:Nadia_Volkova", first.EventID)
	assert.Equal(t, domain.ChannelSlack, first.Channel)
	assert.Equal(t, "09:12", first.Timestamp)
	assert.Equal(t, "Nadia Volkova", first.Author)
	assert.Equal(t, "payout batch for DE merchants looks stuck", first.Root)
	assert.Contains(t, first.Replies, "retries exhausted")

	second := events[1]
	assert.Equal(t, "slack_10:01:Lena", second.EventID)
	assert.Empty(t, second.Replies)
}

func TestSlackParser_SkipsBlockWithoutRoot(t *testing.T) {
	p := NewSlackParser()

	content := "    [09:12] Indented: never a root\n---\n[11:30] Ana: real root"

	events, err := p.Parse(content, "chat.txt")
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Ana", events[0].Author)
}

func TestSlackParser_LeadingNoiseBeforeRoot(t *testing.T) {
	p := NewSlackParser()

	// Non-matching plain lines before the root are skipped, not replies.
	content := "exported from #payments\n[14:05] Jo: fraud alert spike on new accounts\n    ↳ [14:07] Sam: on it"

	events, err := p.Parse(content, "chat.txt")
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "fraud alert spike on new accounts", events[0].Root)
	assert.Contains(t, events[0].Replies, "Sam: on it")
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

func TestClassifier_Email(t *testing.T) {
	c := New()

	content := "Subject: URGENT: Settlement mismatch\nFrom: finance@acme.test\n\nThe ledger totals do not match."

	channel, err := c.Classify(content)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, channel)
}

func TestClassifier_Slack(t *testing.T) {
	c := New()

	content := "[09:12] Nadia: payout batch looks off\n    ↳ [09:14] Omar: checking now\n---\n[10:01] Lena: all clear"

	channel, err := c.Classify(content)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChannelSlack, channel)
}

func TestClassifier_SlackIndentedOnly_NotSlack(t *testing.T) {
	c := New()

	// Only indented pseudo-root lines: no real root message.
	content := "    [09:12] Nadia: hello\n\t[09:14] Omar: hi"

	_, err := c.Classify(content)
	assert.ErrorIs(t, err, ErrUnclassified)
}

func TestClassifier_StandupPlain(t *testing.T) {
	c := New()

	content := "STANDUP: Payments Squad\nDATE: 2026-08-28\nBLOCKERS:\n- no production access"

	channel, err := c.Classify(content)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChannelStandup, channel)
}

func TestClassifier_StandupMarkdown(t *testing.T) {
	c := New()

	content := "# Daily Standup – Risk Team\n## Done\n- closed audit ticket"

	channel, err := c.Classify(content)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChannelStandup, channel)
}

func TestClassifier_StandupWinsOverEmail(t *testing.T) {
	c := New()

	// A standup pasted into a mail dump still goes to the standup parser.
	content := "Subject: notes\n\nSTANDUP: Payments Squad\nDATE: 2026-08-28"

	channel, err := c.Classify(content)
	assert.NoError(t, err)
	assert.Equal(t, domain.ChannelStandup, channel)
}

func TestClassifier_Unclassified(t *testing.T) {
	c := New()

	_, err := c.Classify("just some free-form meeting notes with no structure")
	assert.ErrorIs(t, err, ErrUnclassified)

	_, err = c.Classify("")
	assert.ErrorIs(t, err, ErrUnclassified)
}

package domain

// Channel identifies the input category an event was parsed from.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSlack   Channel = "slack"
	ChannelStandup Channel = "standup"
)

// Label returns the human-readable channel name used in reports.
func (c Channel) Label() string {
	switch c {
	case ChannelEmail:
		return "Email"
	case ChannelSlack:
		return "Slack"
	case ChannelStandup:
		return "Standup"
	}
	return "Doc"
}

// Standup section keys, in report order.
const (
	SectionDone       = "DONE"
	SectionInProgress = "IN_PROGRESS"
	SectionBlockers   = "BLOCKERS"
	SectionRisks      = "RISKS"
	SectionQuestions  = "QUESTIONS"
)

// SectionOrder is the canonical iteration order for standup sections.
var SectionOrder = []string{SectionDone, SectionInProgress, SectionBlockers, SectionRisks, SectionQuestions}

// Event represents one structural unit discovered by a channel parser: an
// email thread, a slack block, or a standup block. EventID is unique within
// a run per channel.
type Event struct {
	EventID    string  `json:"event_id"`
	Channel    Channel `json:"channel"`
	SourceFile string  `json:"source_file"`
	RawText    string  `json:"raw_text"`

	// Email fields
	From    string `json:"from,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`

	// Slack fields
	Timestamp string `json:"timestamp,omitempty"`
	Author    string `json:"author,omitempty"`
	Root      string `json:"root,omitempty"`
	Replies   string `json:"replies,omitempty"`

	// Standup fields
	Team     string              `json:"team,omitempty"`
	Date     string              `json:"date,omitempty"`
	Sections map[string][]string `json:"sections,omitempty"`
}

// Chunk is a bounded slice of an email Event's body. Concatenating chunks in
// index order reconstructs the body ordering; indexes are contiguous from 0.
type Chunk struct {
	ParentEventID string `json:"parent_event_id"`
	ChunkIndex    int    `json:"chunk_index"`
	Text          string `json:"text"`
}

// SourceRef points an Item back at the Event (and Chunk, where applicable)
// it was produced from.
type SourceRef struct {
	EventID    string `json:"event_id"`
	SourceFile string `json:"source_file"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

package parse

import (
	"fmt"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// Parser is the capability contract every channel parser satisfies: split one
// document into the structural events it contains. Parsers are pure and
// deterministic; a document with no recognizable blocks yields an empty slice,
// not an error.
type Parser interface {
	Parse(content, sourceFile string) ([]domain.Event, error)
}

// Registry maps a classified channel to its parser. Adding a channel means
// registering a parser here, not touching existing ones.
type Registry struct {
	parsers map[domain.Channel]Parser
}

// NewRegistry creates a registry with the three built-in channel parsers.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[domain.Channel]Parser{
			domain.ChannelEmail:   NewEmailParser(),
			domain.ChannelSlack:   NewSlackParser(),
			domain.ChannelStandup: NewStandupParser(),
		},
	}
}

// Register adds or replaces the parser for a channel.
func (r *Registry) Register(ch domain.Channel, p Parser) {
	r.parsers[ch] = p
}

// Parser returns the parser registered for the channel.
func (r *Registry) Parser(ch domain.Channel) (Parser, error) {
	p, ok := r.parsers[ch]
	if !ok {
		return nil, fmt.Errorf("no parser registered for channel %q", ch)
	}
	return p, nil
}

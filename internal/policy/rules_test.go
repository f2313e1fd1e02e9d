package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

func TestDefaultTable_Valid(t *testing.T) {
	assert.NoError(t, DefaultTable().Validate())
}

func TestTable_Validate_UnknownSignal(t *testing.T) {
	table := &Table{
		Version: 1,
		Signals: map[string][]string{"sla": {"latency"}},
		Rules: []Rule{
			{Name: "bad", Priority: domain.PriorityP1, Category: "x", Reason: "r", Requires: []string{"missing"}},
		},
	}
	err := table.Validate()
	assert.ErrorContains(t, err, "unknown signal")
}

func TestTable_Validate_BadPriority(t *testing.T) {
	table := &Table{
		Version: 1,
		Signals: map[string][]string{"sla": {"latency"}},
		Rules: []Rule{
			{Name: "bad", Priority: domain.Priority("P9"), Category: "x", Reason: "r", Requires: []string{"sla"}},
		},
	}
	assert.ErrorContains(t, table.Validate(), "invalid priority")
}

func TestTable_Validate_OrderingEnforced(t *testing.T) {
	table := &Table{
		Version: 1,
		Signals: map[string][]string{"sla": {"latency"}, "info": {"fyi"}},
		Rules: []Rule{
			{Name: "low", Priority: domain.PriorityP2, Category: "i", Reason: "r", Requires: []string{"info"}},
			{Name: "high", Priority: domain.PriorityP1, Category: "s", Reason: "r", Requires: []string{"sla"}},
		},
	}
	assert.ErrorContains(t, table.Validate(), "ordered")
}

func TestTable_Validate_Empty(t *testing.T) {
	assert.ErrorContains(t, (&Table{}).Validate(), "no rules")
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: 2
signals:
  sla:
    - latency
    - spiking
rules:
  - name: sla_degradation
    priority: P1
    category: sla-degradation
    reason: "SLA risk"
    requires: [sla]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Version)
	require.Len(t, table.Rules, 1)
	assert.Equal(t, domain.PriorityP1, table.Rules[0].Priority)

	// Loaded table drives the engine the same way the built-in does.
	pri, cat := NewEngine(table, zap.NewNop()).Score("latency is spiking")
	assert.Equal(t, domain.PriorityP1, pri)
	assert.Equal(t, "sla-degradation", cat)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestLoadTable_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unclosed"), 0o644))

	_, err := LoadTable(path)
	assert.ErrorContains(t, err, "failed to parse")
}

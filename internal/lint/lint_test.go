package lint

import (
	"testing"

	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "GraphName,Node,Edge,Context,AgentType,Success_Next,Failure_Next,Input_Fields,Output_Field,Prompt,Description"

func TestLintOrphanNode(t *testing.T) {
	g := parser.Parse(header + "\n" +
		"G,A,,,echo,B,,,,,\n" +
		"G,B,,,echo,,,,,,\n" +
		"G,Lonely,,,echo,,,,,,")

	l, err := NewLinter(nil)
	require.NoError(t, err)

	result := l.Run(g)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0].Message, `"Lonely"`)
	assert.Equal(t, schema.SeverityWarning, result.Issues[0].Severity)
}

func TestLintSingleNodeGraphNotOrphan(t *testing.T) {
	g := parser.Parse(header + "\nG,Only,,,echo,,,,,,")

	l, err := NewLinter(nil)
	require.NoError(t, err)
	assert.Empty(t, l.Run(g).Issues)
}

func TestLintSelfLoop(t *testing.T) {
	g := parser.Parse(header + "\nG,Retry,,,echo,,Retry,,,,")

	l, err := NewLinter(nil)
	require.NoError(t, err)

	result := l.Run(g)
	infos := result.BySeverity(schema.SeverityInfo)
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Message, "routes to itself on failure")
}

func TestLintCELRule(t *testing.T) {
	g := parser.Parse(header + "\n" +
		"G,Ask,,,openai,Done,,,,,\n" +
		"G,Done,,,echo,,,,,,")

	l, err := NewLinter([]Rule{{
		Name:     "llm-needs-prompt",
		Expr:     `category == "llm" && prompt == ""`,
		Message:  "LLM node has no prompt",
		Severity: schema.SeverityWarning,
	}})
	require.NoError(t, err)

	result := l.Run(g)
	matches := result.ByCode(schema.CodeLintRule)
	require.NotEmpty(t, matches)

	var found bool
	for _, iss := range matches {
		if iss.Severity == schema.SeverityWarning && iss.Row == 2 {
			assert.Contains(t, iss.Message, "LLM node has no prompt")
			assert.Contains(t, iss.Message, `"Ask"`)
			found = true
		}
	}
	assert.True(t, found, "expected the rule to flag the Ask node")
}

func TestLintCELRuleOnTargets(t *testing.T) {
	g := parser.Parse(header + "\n" +
		"G,Fan,,,echo,A|B|C,,,,,\n" +
		"G,A,,,echo,,,,,,\nG,B,,,echo,,,,,,\nG,C,,,echo,,,,,,")

	l, err := NewLinter([]Rule{{
		Name: "wide-fanout",
		Expr: `size(success_next) > 2`,
	}})
	require.NoError(t, err)

	result := l.Run(g)
	var flagged int
	for _, iss := range result.Issues {
		if iss.Severity == schema.SeverityWarning {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestLintBadRuleReported(t *testing.T) {
	g := parser.Parse(header + "\nG,A,,,echo,,,,,,")

	l, err := NewLinter([]Rule{{Name: "broken", Expr: "this is not CEL ((("}})
	require.NoError(t, err)

	result := l.Run(g)
	errs := result.BySeverity(schema.SeverityError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `"broken"`)
}

func TestLintNonBooleanRuleReported(t *testing.T) {
	g := parser.Parse(header + "\nG,A,,,echo,,,,,,")

	l, err := NewLinter([]Rule{{Name: "notbool", Expr: `name`}})
	require.NoError(t, err)

	result := l.Run(g)
	require.Len(t, result.BySeverity(schema.SeverityError), 1)
}

func TestCELEngineCaches(t *testing.T) {
	e, err := NewCELEngine()
	require.NoError(t, err)

	node := schema.Node{Name: "A", AgentType: "echo"}
	for i := 0; i < 3; i++ {
		matched, evalErr := e.EvalNode(`agent_type == "echo"`, node, "G")
		require.NoError(t, evalErr)
		assert.True(t, matched)
	}
	assert.Len(t, e.cache, 1)
}

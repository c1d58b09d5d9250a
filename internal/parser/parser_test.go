package parser

import (
	"strings"
	"testing"

	"github.com/rendis/flowmap/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerLine = "GraphName,Node,Edge,Context,AgentType,Success_Next,Failure_Next,Input_Fields,Output_Field,Prompt,Description"

func table(rows ...string) string {
	return headerLine + "\n" + strings.Join(rows, "\n")
}

func TestParseScenario(t *testing.T) {
	g := Parse(table(
		"G,Start,,,input,Next,Err,,x,,Get input",
		"G,Next,,,echo,End,Err,x,y,,Echo it",
		"G,End,,,echo,,,y,out,,Done",
		"G,Err,,,echo,,,e,out,,Error",
	))

	require.Len(t, g.Nodes, 4)
	assert.Empty(t, g.Diagnostics.Issues)
	assert.Equal(t, "G", g.GraphName)
	assert.NotEmpty(t, g.ID)

	require.Len(t, g.Edges, 4)
	assert.Equal(t, schema.Edge{From: "Start", To: "Next", Kind: schema.EdgeKindSuccess}, g.Edges[0])
	assert.Equal(t, schema.Edge{From: "Start", To: "Err", Kind: schema.EdgeKindFailure}, g.Edges[1])
	assert.Equal(t, schema.Edge{From: "Next", To: "End", Kind: schema.EdgeKindSuccess}, g.Edges[2])
	assert.Equal(t, schema.Edge{From: "Next", To: "Err", Kind: schema.EdgeKindFailure}, g.Edges[3])
}

func TestParseHeaderOnly(t *testing.T) {
	g := Parse(headerLine)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.Diagnostics.Issues)

	s := g.Stats()
	assert.Zero(t, s.NodeCount)
	assert.Zero(t, s.EdgeCount)
	assert.Empty(t, s.GraphName)
}

func TestParseEmptyInput(t *testing.T) {
	g := Parse("")
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestParseMissingHeaderColumns(t *testing.T) {
	g := Parse("GraphName,Node,AgentType\nG,A,echo")

	missing := g.Diagnostics.ByCode(schema.CodeMissingHeader)
	require.Len(t, missing, 8)
	for _, iss := range missing {
		assert.Equal(t, schema.SeverityError, iss.Severity)
		assert.Equal(t, 1, iss.Row)
	}

	// Header problems do not block row parsing.
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "A", g.Nodes[0].Name)
}

func TestParseHeaderAfterBlankLines(t *testing.T) {
	// Blank lines before the header shift it down; diagnostics must carry
	// the header's actual input line.
	g := Parse("\n\nGraphName,Node,AgentType\nG,A,echo")

	missing := g.Diagnostics.ByCode(schema.CodeMissingHeader)
	require.Len(t, missing, 8)
	for _, iss := range missing {
		assert.Equal(t, 3, iss.Row)
	}

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, 4, g.Nodes[0].Row)
}

func TestParseRequiredFieldSkip(t *testing.T) {
	g := Parse(table(
		"G,,,,echo,,,,,,no name here",
		"G,Ok,,,echo,,,,,,fine",
	))

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "Ok", g.Nodes[0].Name)

	missing := g.Diagnostics.ByCode(schema.CodeMissingRequiredField)
	require.Len(t, missing, 1)
	assert.Equal(t, 2, missing[0].Row)
	assert.Equal(t, ColNode, missing[0].Column)
}

func TestParseMissingAgentType(t *testing.T) {
	g := Parse(table("G,NoType,,,   ,,,,,,"))

	assert.Empty(t, g.Nodes)
	missing := g.Diagnostics.ByCode(schema.CodeMissingRequiredField)
	require.Len(t, missing, 1)
	assert.Equal(t, ColAgentType, missing[0].Column)
}

func TestParseRowLengthMismatch(t *testing.T) {
	g := Parse(table(
		"G,Short,echo",
		"G,Ok,,,echo,,,,,,fine",
	))

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "Ok", g.Nodes[0].Name)

	mismatch := g.Diagnostics.ByCode(schema.CodeRowLengthMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, 2, mismatch[0].Row)
}

func TestParseMultiTargetFanOut(t *testing.T) {
	g := Parse(table(
		"G,X,,,echo,A|B|C,,,,,",
		"G,A,,,echo,,,,,,",
		"G,B,,,echo,,,,,,",
		"G,C,,,echo,,,,,,",
	))

	require.Len(t, g.Edges, 3)
	for i, to := range []string{"A", "B", "C"} {
		assert.Equal(t, "X", g.Edges[i].From)
		assert.Equal(t, to, g.Edges[i].To)
		assert.Equal(t, schema.EdgeKindSuccess, g.Edges[i].Kind)
	}
}

func TestParseFanOutDropsEmptyPieces(t *testing.T) {
	g := Parse(table("G,X,,,echo, A || B |,,,,,"))

	x, ok := g.Node("X")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, x.SuccessTargets)
}

func TestParseDuplicateEdgesKept(t *testing.T) {
	// Fan-out to the same target twice is intentional: two edges, no dedup.
	g := Parse(table(
		"G,X,,,echo,A|A,,,,,",
		"G,A,,,echo,,,,,,",
	))

	require.Len(t, g.Edges, 2)
	assert.Equal(t, g.Edges[0], g.Edges[1])
}

func TestParseDanglingEdgeLenient(t *testing.T) {
	g := Parse(table("G,X,,,echo,Y,,,,,"))

	// The edge stays in the graph.
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "Y", g.Edges[0].To)

	dangling := g.Diagnostics.ByCode(schema.CodeDanglingEdgeTarget)
	require.Len(t, dangling, 1)
	assert.Contains(t, dangling[0].Message, "Connection references non-existent node: 'Y'")
	assert.Equal(t, ColSuccessNext, dangling[0].Column)
	assert.Equal(t, 2, dangling[0].Row)
}

func TestParseDanglingEdgeStrict(t *testing.T) {
	g := ParseWithOptions(table(
		"G,X,,,echo,Y,Z,,,,",
		"G,Z,,,echo,,,,,,",
	), Options{EdgePolicy: EdgePolicyStrict})

	// Success edge to Y dropped, failure edge to Z kept.
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "Z", g.Edges[0].To)
	assert.Equal(t, schema.EdgeKindFailure, g.Edges[0].Kind)

	require.Len(t, g.Diagnostics.ByCode(schema.CodeDanglingEdgeTarget), 1)
}

func TestParseDanglingFailureColumn(t *testing.T) {
	g := Parse(table("G,X,,,echo,,Gone,,,,"))

	dangling := g.Diagnostics.ByCode(schema.CodeDanglingEdgeTarget)
	require.Len(t, dangling, 1)
	assert.Equal(t, ColFailureNext, dangling[0].Column)
}

func TestParseGraphNameFirstWins(t *testing.T) {
	g := Parse(table(
		",First,,,echo,,,,,,",
		"Alpha,Second,,,echo,,,,,,",
		"Beta,Third,,,echo,,,,,,",
	))
	assert.Equal(t, "Alpha", g.GraphName)
}

func TestParseBraceContextField(t *testing.T) {
	g := Parse(table(`G,A,,{"memory": {"k": "v, w"}},echo,,,,,,`))

	a, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, `{"memory": {"k": "v, w"}}`, a.Context)
	assert.Empty(t, g.Diagnostics.Issues)
}

func TestParseTokenizerIssuesSurfaced(t *testing.T) {
	g := Parse(table(`G,A,,"open quote,echo,,,,,,`))

	infos := g.Diagnostics.ByCode(schema.CodeUnterminatedQuote)
	require.Len(t, infos, 1)
	assert.Equal(t, schema.SeverityInfo, infos[0].Severity)
	assert.Equal(t, 2, infos[0].Row)
}

func TestParseDuplicateNodeWarned(t *testing.T) {
	g := Parse(table(
		"G,A,,,echo,,,,,,first",
		"G,A,,,echo,,,,,,second",
	))

	// Both rows survive in insertion order; the repeat is warned.
	require.Len(t, g.Nodes, 2)
	dups := g.Diagnostics.ByCode(schema.CodeDuplicateNode)
	require.Len(t, dups, 1)
	assert.Equal(t, schema.SeverityWarning, dups[0].Severity)
	assert.Equal(t, 3, dups[0].Row)
}

func TestParseSkipsBlankLines(t *testing.T) {
	g := Parse(headerLine + "\n\nG,A,,,echo,,,,,,\n\r\n")
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, 3, g.Nodes[0].Row)
}

func TestParseQuotedDescriptionWithComma(t *testing.T) {
	g := Parse(table(`G,A,,,echo,,,,,,"Fetch, then parse"`))

	a, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, "Fetch, then parse", a.Description)
}

func TestSplitTargets(t *testing.T) {
	assert.Nil(t, SplitTargets(""))
	assert.Nil(t, SplitTargets("   "))
	assert.Equal(t, []string{"A"}, SplitTargets("A"))
	assert.Equal(t, []string{"A", "B"}, SplitTargets(" A | B "))
	assert.Equal(t, []string{"A", "A"}, SplitTargets("A|A"))
}

func TestExtractEdgesOrder(t *testing.T) {
	edges := ExtractEdges(schema.Node{
		Name:           "N",
		SuccessTargets: []string{"S1", "S2"},
		FailureTargets: []string{"F1"},
	})
	require.Len(t, edges, 3)
	assert.Equal(t, schema.EdgeKindSuccess, edges[0].Kind)
	assert.Equal(t, schema.EdgeKindSuccess, edges[1].Kind)
	assert.Equal(t, schema.EdgeKindFailure, edges[2].Kind)
	assert.Equal(t, "F1", edges[2].To)
}

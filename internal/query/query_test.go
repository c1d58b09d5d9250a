package query

import (
	"context"
	"testing"

	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `GraphName,Node,Edge,Context,AgentType,Success_Next,Failure_Next,Input_Fields,Output_Field,Prompt,Description
G,Start,,,input,Ask,Err,,q,,Collect question
G,Ask,,,openai,Done,Err,q,a,Answer the question,Ask the model
G,Done,,,echo,,,a,out,,Done
G,Err,,,echo,,,e,out,,Error`

func TestQueryGraphNodeNames(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewGoJQEngine()

	out, err := e.QueryGraph(context.Background(), g, `.nodes[].name`)
	require.NoError(t, err)
	assert.Equal(t, []any{"Start", "Ask", "Done", "Err"}, out)
}

func TestQueryGraphSingleOutput(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewGoJQEngine()

	out, err := e.QueryGraph(context.Background(), g, `.nodes | length`)
	require.NoError(t, err)
	assert.EqualValues(t, 4, out)
}

func TestQueryGraphEdgeSelection(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewGoJQEngine()

	out, err := e.QueryGraph(context.Background(), g,
		`[.edges[] | select(.kind == "failure") | .to] | unique`)
	require.NoError(t, err)
	assert.Equal(t, []any{"Err"}, out)
}

func TestQueryParseError(t *testing.T) {
	e := NewGoJQEngine()
	_, err := e.Evaluate(context.Background(), `.nodes[`, map[string]any{})
	require.Error(t, err)

	fmErr, ok := err.(*schema.FlowmapError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeValidation, fmErr.Code)
}

func TestQueryEmptyExpression(t *testing.T) {
	e := NewGoJQEngine()
	_, err := e.Evaluate(context.Background(), "", nil)
	require.Error(t, err)
}

func TestQueryCompileCache(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewGoJQEngine()

	for i := 0; i < 3; i++ {
		_, err := e.QueryGraph(context.Background(), g, `.graph_name`)
		require.NoError(t, err)
	}
	assert.Len(t, e.cache, 1)
}

func TestFilterNodesByCategory(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewFilterEngine()

	nodes, err := e.FilterNodes(g, `category == "llm"`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Ask", nodes[0].Name)
}

func TestFilterNodesByTargets(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewFilterEngine()

	nodes, err := e.FilterNodes(g, `"Err" in failure_next`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Start", nodes[0].Name)
	assert.Equal(t, "Ask", nodes[1].Name)
}

func TestFilterNodesNoMatch(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewFilterEngine()

	nodes, err := e.FilterNodes(g, `agent_type == "gemini"`)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestFilterCompileError(t *testing.T) {
	g := parser.Parse(sampleTable)
	e := NewFilterEngine()

	_, err := e.FilterNodes(g, `name ==`)
	require.Error(t, err)
}

package diagram

import (
	"testing"

	"github.com/rendis/flowmap/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderImageScenario(t *testing.T) {
	g := parser.Parse(scenarioTable)

	png, err := RenderImage(Build(g))
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes: 0x89 P N G.
	assert.True(t, len(png) > 8, "PNG should be larger than header")
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, byte('P'), png[1])
	assert.Equal(t, byte('N'), png[2])
	assert.Equal(t, byte('G'), png[3])
}

func TestRenderImageEmptyGraph(t *testing.T) {
	png, err := RenderImage(&Model{})
	require.NoError(t, err)
	assert.Empty(t, png)
}

func TestRenderImageDanglingTarget(t *testing.T) {
	g := parser.Parse(`GraphName,Node,Edge,Context,AgentType,Success_Next,Failure_Next,Input_Fields,Output_Field,Prompt,Description
G,X,,,echo,Ghost,,,,,`)

	png, err := RenderImage(Build(g))
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowmap/internal/parser"
)

func TestNewFlowmapServer(t *testing.T) {
	s := NewFlowmapServer(FlowmapServerDeps{})
	require.NotNil(t, s)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.logger)
	assert.NotNil(t, s.palette)
	assert.Equal(t, parser.EdgePolicyLenient, s.policy)
}

func TestToolRegistration(t *testing.T) {
	s := NewFlowmapServer(FlowmapServerDeps{})

	tools := s.mcpServer.ListTools()
	require.Len(t, tools, 5)

	expectedTools := []string{
		"flowmap.compile",
		"flowmap.lint",
		"flowmap.query",
		"flowmap.save",
		"flowmap.catalog",
	}
	for _, name := range expectedTools {
		tool := s.mcpServer.GetTool(name)
		assert.NotNil(t, tool, "tool %s should be registered", name)
	}
}

func TestServerHonorsEdgePolicy(t *testing.T) {
	s := NewFlowmapServer(FlowmapServerDeps{EdgePolicy: parser.EdgePolicyStrict})
	assert.Equal(t, parser.EdgePolicyStrict, s.policy)
}

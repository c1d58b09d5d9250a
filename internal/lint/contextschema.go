package lint

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rendis/flowmap/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ContextChecker validates brace-delimited JSON context payloads against a
// user-supplied JSON Schema (Draft 2020-12). The core treats Context as
// opaque text; this check only engages for nodes whose Context parses as
// JSON, and only when the caller configured a schema.
// Safe for concurrent use.
type ContextChecker struct {
	compiled *jsonschema.Schema

	once     sync.Once
	buildErr error
	raw      []byte
}

// NewContextChecker creates a checker for the given JSON Schema document.
func NewContextChecker(schemaJSON []byte) *ContextChecker {
	return &ContextChecker{raw: schemaJSON}
}

// Check validates every JSON-looking Context field in the graph.
// Nodes with empty or non-JSON contexts are skipped silently; schema
// violations become warning diagnostics (advisory, like all lint output).
func (c *ContextChecker) Check(graph *schema.WorkflowGraph) (*schema.ValidationResult, error) {
	if err := c.compile(); err != nil {
		return nil, err
	}

	result := &schema.ValidationResult{}
	for _, node := range graph.Nodes {
		ctxText := strings.TrimSpace(node.Context)
		if !strings.HasPrefix(ctxText, "{") {
			continue
		}

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(ctxText))
		if err != nil {
			result.AddWarning(node.Row, "Context", schema.CodeContextSchema,
				fmt.Sprintf("node %q context looks like JSON but does not parse: %v", node.Name, err))
			continue
		}

		if err := c.compiled.Validate(doc); err != nil {
			result.AddWarning(node.Row, "Context", schema.CodeContextSchema,
				fmt.Sprintf("node %q context violates schema: %v", node.Name, err))
		}
	}
	return result, nil
}

// compile builds the validator on first use.
func (c *ContextChecker) compile() error {
	c.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(c.raw)))
		if err != nil {
			c.buildErr = schema.NewError(schema.ErrCodeConfig, "invalid context schema JSON").WithCause(err)
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat()
		if err := compiler.AddResource("flowmap://context-schema.json", doc); err != nil {
			c.buildErr = schema.NewError(schema.ErrCodeConfig, "register context schema").WithCause(err)
			return
		}

		compiled, err := compiler.Compile("flowmap://context-schema.json")
		if err != nil {
			c.buildErr = schema.NewError(schema.ErrCodeConfig, "compile context schema").WithCause(err)
			return
		}
		c.compiled = compiled
	})
	return c.buildErr
}

package lint

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/rendis/flowmap/pkg/schema"
)

// CELEngine evaluates lint rule predicates against individual nodes using
// Google's Common Expression Language.
// Thread-safe: compiled programs are cached and reused across goroutines.
type CELEngine struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewCELEngine creates a CEL engine with the node lint environment.
// Each rule expression sees one node at a time through these variables:
//   - name, agent_type, category, context, prompt, description,
//     input_fields, output_field: string
//   - success_next, failure_next: list(string)
//   - graph: string (resolved graph name)
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("agent_type", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("context", cel.StringType),
		cel.Variable("prompt", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("input_fields", cel.StringType),
		cel.Variable("output_field", cel.StringType),
		cel.Variable("success_next", cel.ListType(cel.StringType)),
		cel.Variable("failure_next", cel.ListType(cel.StringType)),
		cel.Variable("graph", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &CELEngine{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// EvalNode evaluates a rule predicate against one node. The predicate must
// yield a boolean; true means the rule matched (the node is flagged).
func (e *CELEngine) EvalNode(expression string, node schema.Node, graphName string) (bool, error) {
	if expression == "" {
		return false, schema.NewError(schema.ErrCodeValidation, "empty CEL expression")
	}

	prg, err := e.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(nodeActivation(node, graphName))
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeExecution,
			"CEL evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"rule %q must evaluate to a boolean, got %T", expression, out.Value())
	}
	return matched, nil
}

// getOrCompile returns a cached compiled program or compiles and caches a new one.
func (e *CELEngine) getOrCompile(expression string) (cel.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring write lock.
	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL compile error in %q: %s", expression, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": expression})
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL program error for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = prg
	return prg, nil
}

// nodeActivation flattens a node into the rule evaluation environment.
// Nil target slices become empty lists to prevent CEL runtime nil-ref errors.
func nodeActivation(node schema.Node, graphName string) map[string]any {
	return map[string]any{
		"name":         node.Name,
		"agent_type":   node.AgentType,
		"category":     string(schema.ClassifyAgentType(node.AgentType)),
		"context":      node.Context,
		"prompt":       node.Prompt,
		"description":  node.Description,
		"input_fields": node.InputFields,
		"output_field": node.OutputField,
		"success_next": emptyIfNil(node.SuccessTargets),
		"failure_next": emptyIfNil(node.FailureTargets),
		"graph":        graphName,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

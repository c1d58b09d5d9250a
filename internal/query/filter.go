package query

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rendis/flowmap/pkg/schema"
)

// FilterEngine selects nodes from a graph using expr predicates. The
// expression sees one node at a time with the same flattened environment the
// lint rules use (name, agent_type, category, targets, graph, ...).
// Thread-safe: compiled *vm.Program objects are cached and reused.
type FilterEngine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewFilterEngine creates a new FilterEngine.
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{cache: make(map[string]*vm.Program)}
}

// FilterNodes returns the nodes for which the predicate yields true,
// preserving graph order.
func (e *FilterEngine) FilterNodes(graph *schema.WorkflowGraph, expression string) ([]schema.Node, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty filter expression")
	}

	var out []schema.Node
	for _, node := range graph.Nodes {
		matched, err := e.evalNode(expression, node, graph.GraphName)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, node)
		}
	}
	return out, nil
}

func (e *FilterEngine) evalNode(expression string, node schema.Node, graphName string) (bool, error) {
	env := nodeEnv(node, graphName)

	prg, err := e.getOrCompile(expression, env)
	if err != nil {
		return false, err
	}

	out, err := vm.Run(prg, env)
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeExecution,
			"filter evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	matched, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"filter %q must evaluate to a boolean, got %T", expression, out)
	}
	return matched, nil
}

// getOrCompile returns a cached compiled program or compiles and caches a new one.
func (e *FilterEngine) getOrCompile(expression string, env map[string]any) (*vm.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	prg, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"filter compile error in %q: %s", expression, err.Error()).WithCause(err)
	}

	e.cache[expression] = prg
	return prg, nil
}

// nodeEnv flattens a node into the filter environment.
func nodeEnv(node schema.Node, graphName string) map[string]any {
	successNext := node.SuccessTargets
	if successNext == nil {
		successNext = []string{}
	}
	failureNext := node.FailureTargets
	if failureNext == nil {
		failureNext = []string{}
	}
	return map[string]any{
		"name":         node.Name,
		"agent_type":   node.AgentType,
		"category":     string(schema.ClassifyAgentType(node.AgentType)),
		"context":      node.Context,
		"prompt":       node.Prompt,
		"description":  node.Description,
		"input_fields": node.InputFields,
		"output_field": node.OutputField,
		"success_next": successNext,
		"failure_next": failureNext,
		"graph":        graphName,
	}
}

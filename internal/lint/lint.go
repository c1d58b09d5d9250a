// Package lint runs advisory checks over an assembled workflow graph:
// built-in structural checks plus user-defined CEL rule predicates.
// Lint never mutates the graph and never fails the compile; findings are
// appended to a ValidationResult like every other diagnostic.
package lint

import (
	"fmt"

	"github.com/rendis/flowmap/pkg/schema"
)

// Rule is one user-defined lint rule: a CEL predicate evaluated per node.
// A node for which Expr yields true is flagged with Message at Severity.
type Rule struct {
	Name     string
	Expr     string
	Message  string
	Severity schema.ValidationSeverity
}

// Linter runs built-in checks and configured rules against a graph.
type Linter struct {
	cel   *CELEngine
	rules []Rule
}

// NewLinter creates a Linter with the given rules.
func NewLinter(rules []Rule) (*Linter, error) {
	engine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Linter{cel: engine, rules: rules}, nil
}

// Run executes every check against the graph and returns the findings.
// A rule that fails to compile or evaluate produces a single error-severity
// finding naming the rule; remaining rules still run.
func (l *Linter) Run(graph *schema.WorkflowGraph) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	l.checkOrphans(graph, result)
	l.checkSelfLoops(graph, result)
	l.checkGraphShape(graph, result)

	for _, rule := range l.rules {
		l.runRule(graph, rule, result)
	}

	return result
}

// checkOrphans flags nodes with no incoming and no outgoing edges.
func (l *Linter) checkOrphans(graph *schema.WorkflowGraph, result *schema.ValidationResult) {
	connected := make(map[string]bool, len(graph.Nodes))
	for _, e := range graph.Edges {
		connected[e.From] = true
		connected[e.To] = true
	}
	for _, n := range graph.Nodes {
		if len(graph.Nodes) > 1 && !connected[n.Name] {
			result.AddWarning(n.Row, "", schema.CodeLintRule,
				fmt.Sprintf("node %q is not connected to any other node", n.Name))
		}
	}
}

// checkSelfLoops flags edges whose source and target are the same node.
func (l *Linter) checkSelfLoops(graph *schema.WorkflowGraph, result *schema.ValidationResult) {
	rows := nodeRows(graph)
	for _, e := range graph.Edges {
		if e.From == e.To {
			result.AddInfo(rows[e.From], "", schema.CodeLintRule,
				fmt.Sprintf("node %q routes to itself on %s", e.From, e.Kind))
		}
	}
}

// runRule evaluates one CEL rule against every node.
func (l *Linter) runRule(graph *schema.WorkflowGraph, rule Rule, result *schema.ValidationResult) {
	severity := rule.Severity
	if severity == "" {
		severity = schema.SeverityWarning
	}

	for _, node := range graph.Nodes {
		matched, err := l.cel.EvalNode(rule.Expr, node, graph.GraphName)
		if err != nil {
			result.AddError(0, "", schema.CodeLintRule,
				fmt.Sprintf("rule %q: %v", rule.Name, err))
			return
		}
		if !matched {
			continue
		}

		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("rule %q matched", rule.Name)
		}
		issue := schema.ValidationIssue{
			Row:      node.Row,
			Code:     schema.CodeLintRule,
			Message:  fmt.Sprintf("%s (node %q)", message, node.Name),
			Severity: severity,
		}
		result.Issues = append(result.Issues, issue)
	}
}

func nodeRows(graph *schema.WorkflowGraph) map[string]int {
	rows := make(map[string]int, len(graph.Nodes))
	for _, n := range graph.Nodes {
		if _, ok := rows[n.Name]; !ok {
			rows[n.Name] = n.Row
		}
	}
	return rows
}

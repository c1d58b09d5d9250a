package parser

import (
	"fmt"
	"strings"

	"github.com/rendis/flowmap/pkg/schema"
)

// NodeFromRow builds a candidate Node from one tokenized data row by zipping
// header names to field values. Fields absent from the row default to the
// empty string. The row is rejected (ok=false) on a field-count mismatch or
// when a required field is blank after trimming; either way the failure is a
// diagnostic, never an error.
func NodeFromRow(header, fields []string, row int, result *schema.ValidationResult) (schema.Node, bool) {
	if len(fields) != len(header) {
		result.AddError(row, "", schema.CodeRowLengthMismatch,
			fmt.Sprintf("row has %d fields, header has %d", len(fields), len(header)))
		return schema.Node{}, false
	}

	values := make(map[string]string, len(header))
	for i, col := range header {
		values[col] = fields[i]
	}

	name := strings.TrimSpace(values[ColNode])
	agentType := strings.TrimSpace(values[ColAgentType])
	if name == "" {
		result.AddError(row, ColNode, schema.CodeMissingRequiredField,
			"node name is required")
		return schema.Node{}, false
	}
	if agentType == "" {
		result.AddError(row, ColAgentType, schema.CodeMissingRequiredField,
			fmt.Sprintf("node %q has no agent type", name))
		return schema.Node{}, false
	}

	return schema.Node{
		Name:           name,
		GraphName:      strings.TrimSpace(values[ColGraphName]),
		AgentType:      agentType,
		Context:        values[ColContext],
		SuccessTargets: SplitTargets(values[ColSuccessNext]),
		FailureTargets: SplitTargets(values[ColFailureNext]),
		InputFields:    values[ColInputFields],
		OutputField:    values[ColOutputField],
		Prompt:         values[ColPrompt],
		Description:    values[ColDescription],
		Row:            row,
	}, true
}

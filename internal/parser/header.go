package parser

import (
	"fmt"

	"github.com/rendis/flowmap/pkg/schema"
)

// Column names of the tabular workflow format.
const (
	ColGraphName   = "GraphName"
	ColNode        = "Node"
	ColEdge        = "Edge"
	ColContext     = "Context"
	ColAgentType   = "AgentType"
	ColSuccessNext = "Success_Next"
	ColFailureNext = "Failure_Next"
	ColInputFields = "Input_Fields"
	ColOutputField = "Output_Field"
	ColPrompt      = "Prompt"
	ColDescription = "Description"
)

// ExpectedColumns lists the columns a well-formed table declares.
// Presence is required; order is not enforced and extra columns are ignored.
func ExpectedColumns() []string {
	return []string{
		ColGraphName, ColNode, ColEdge, ColContext, ColAgentType,
		ColSuccessNext, ColFailureNext, ColInputFields, ColOutputField,
		ColPrompt, ColDescription,
	}
}

// ValidateHeader reports every expected column absent from the header as an
// error diagnostic at the header's input line. Header problems are additive:
// row parsing proceeds with whatever columns are present.
func ValidateHeader(header []string, line int, result *schema.ValidationResult) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, want := range ExpectedColumns() {
		if !present[want] {
			result.AddError(line, want, schema.CodeMissingHeader,
				fmt.Sprintf("missing expected column %q", want))
		}
	}
}

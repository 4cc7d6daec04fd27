package ical

import "regexp"

// foldedContinuation matches a line break immediately followed by a single
// TAB or space: RFC 5545 section 3.1's folding rule. Both the break and that
// one whitespace character are removed, merging the continuation into the
// previous logical line. This must not match two lines that both start at
// column 0, which the lookaround-free regex below guarantees simply by
// requiring the whitespace to be present right after the break.
var foldedContinuation = regexp.MustCompile("\r?\n[\t ]")

// unfold merges folded continuation lines into their parent line, ahead of
// tokenization. It is applied once over the whole input, matching
// original_source's strip_folds pass that runs before grammar parsing.
func unfold(text string) string {
	return foldedContinuation.ReplaceAllString(text, "")
}

package autolink

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Matchers anchor on a shared boundary class (start of string,
// whitespace, or an opening bracket), then the format-encoded prefix,
// then the id capture, then a word boundary. Submatch layout:
//
//	1: leading boundary character (may be empty at start of string)
//	2: the full prefixed match, e.g. "#123"
//	3: the id, e.g. "123"
const boundaryClass = `(^|\s|[([{])`

// compileSearch builds the matcher for one (prefix, format) pair. With
// a non-empty literalID the pattern re-identifies a previously
// extracted id exactly, always case-sensitively; otherwise it captures
// the generic id class, case-insensitively when ignoreCase is set.
func compileSearch(prefix string, alphanumeric, ignoreCase bool, format Format, literalID string) (*regexp.Regexp, error) {
	var idPattern string
	switch {
	case literalID != "":
		idPattern = regexp.QuoteMeta(literalID)
	case alphanumeric:
		idPattern = `\w+`
	default:
		idPattern = `\d+`
	}

	var flags string
	if ignoreCase && literalID == "" {
		flags = "(?i)"
	}

	pattern := flags + boundaryClass + `(` + encodePrefix(prefix, format) + `(` + idPattern + `))\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling matcher for prefix %q: %w", prefix, err)
	}
	return re, nil
}

// encodePrefix escapes the prefix the way the target format encodes
// text, then regexp-quotes the result. Markdown matchers run against
// markdown-escaped text (see EscapeMarkdown) and HTML matchers against
// entity-encoded text; encoding the prefix identically keeps the
// matcher aligned with the input, and keeps rendered output (which
// contains the raw prefix) from re-matching.
func encodePrefix(prefix string, format Format) string {
	switch format {
	case FormatMarkdown:
		return regexp.QuoteMeta(EscapeMarkdown(prefix))
	case FormatHTML:
		return regexp.QuoteMeta(html.EscapeString(prefix))
	default:
		return regexp.QuoteMeta(prefix)
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`.`, `\.`,
	`!`, `\!`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// EscapeMarkdown escapes text for literal inclusion in Markdown. Text
// handed to Engine.Render with FormatMarkdown must have been escaped
// with this function.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// branchIDCapture is the named capture every branch rule exposes.
const branchIDCapture = "issuekeynumber"

// compileBranchRules builds the ordered branch-name rule list for a
// definition. The rules are independent of output format.
//
// With a prefix there is a single rule: the prefix, then 2+ digits,
// terminated by a path separator or end of string. Without a prefix,
// four rules are tried in order: an issue-ish keyword followed by a
// connector (and optional intervening key text) and 2+ digits; 3+
// digits preceded by two or more non-digit, non-slash characters; 3+
// digits followed by two or more such characters; and finally a branch
// name that is nothing but 3+ digits.
func compileBranchRules(prefix string, ignoreCase bool) ([]*regexp.Regexp, error) {
	var patterns []string
	if prefix != "" {
		p := `(?:^|[\-_/])` + regexp.QuoteMeta(prefix) + `(?P<` + branchIDCapture + `>\d{2,})(?:[\-_/.]|$)`
		if ignoreCase {
			p = "(?i)" + p
		}
		patterns = []string{p}
	} else {
		patterns = []string{
			`(?i)\b(?:feature|feat|fix|bug|bugfix|hotfix|issue|ticket)[\-_/](?:[^/]*?[\-_])?(?P<` + branchIDCapture + `>\d{2,})`,
			`[^\d/]{2,}(?P<` + branchIDCapture + `>\d{3,})`,
			`(?P<` + branchIDCapture + `>\d{3,})[^\d/]{2,}`,
			`^(?P<` + branchIDCapture + `>\d{3,})$`,
		}
	}

	rules := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling branch rule for prefix %q: %w", prefix, err)
		}
		rules = append(rules, re)
	}
	return rules, nil
}

// branchCaptureID pulls the named id capture out of a branch rule
// match.
func branchCaptureID(re *regexp.Regexp, match []string) string {
	idx := re.SubexpIndex(branchIDCapture)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return match[idx]
}

package shell

import (
	"context"
	"regexp"
	"strings"
)

var (
	tokenRe      = regexp.MustCompile(`\|\||&&|[|;]|&>>?|[0-9]*(?:>>|>&|>\||>|<&|<<<|<<|<)[0-9]*-?|'[^']*'|"(?:[^"\\]|\\.)*"|(?:\\.|[^\s|;&<>'"])+`)
	redirectRe   = regexp.MustCompile(`^(&>>|&>|[0-9]*(?:>>|>&|>\||>|<&|<<<|<<|<))`)
	assignRe     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\[[^\]]*\])?\+?=`)
	varReadRe    = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)`)
	forVarRe     = regexp.MustCompile(`^\s*for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\b`)
	loopKeywords = map[string]bool{"for": true, "while": true, "until": true, "select": true}
	declKeywords = map[string]bool{"export": true, "local": true, "declare": true, "readonly": true, "typeset": true}

	// Reserved words and grouping tokens that may precede a command in the
	// same segment, and the closers that end a compound command.
	leadKeywords = map[string]bool{
		"if": true, "then": true, "elif": true, "else": true, "do": true,
		"while": true, "until": true, "!": true, "{": true, "time": true,
	}
	closers = map[string]bool{"fi": true, "done": true, "esac": true, "}": true}
)

// RegexStrategy derives command structure by tokenizing with regular
// expressions. It handles quoting and the common operators but not nested
// constructs.
type RegexStrategy struct{}

// NewRegexStrategy returns the regex tokenizer strategy.
func NewRegexStrategy() *RegexStrategy {
	return &RegexStrategy{}
}

// Name implements Strategy.
func (s *RegexStrategy) Name() string { return "regex" }

// Analyze implements Strategy.
func (s *RegexStrategy) Analyze(_ context.Context, text string) (Structure, error) {
	tokens := tokenRe.FindAllString(text, -1)

	var (
		st       Structure
		segments [][]string
		current  []string
		ops      []string
		written  []string
	)
	for _, tok := range tokens {
		switch tok {
		case "&&", "||", "|", ";":
			ops = append(ops, tok)
			segments = append(segments, current)
			current = nil
		default:
			current = append(current, tok)
		}
	}
	segments = append(segments, current)

	first := true
	for _, seg := range segments {
		name, args, sudo, assigns, redirs := splitSegment(seg)
		st.Redirections = append(st.Redirections, redirs...)
		written = append(written, assigns...)
		if sudo {
			st.UsesSudo = true
		}
		if name == "" {
			continue
		}
		if declKeywords[name] {
			for _, a := range args {
				if m := assignRe.FindStringSubmatch(a); m != nil {
					written = append(written, m[1])
				}
			}
		}
		st.Commands = append(st.Commands, name)
		if first {
			st.CommandName = name
			st.Arguments = args
			first = false
		}
	}
	if m := forVarRe.FindStringSubmatch(text); m != nil {
		written = append(written, m[1])
	}

	var read []string
	for _, m := range varReadRe.FindAllStringSubmatch(text, -1) {
		read = append(read, m[1])
	}
	st.VariablesRead = sortedUnique(read)
	st.VariablesWritten = sortedUnique(written)
	st.CommandType = regexCommandType(segments, ops, st.CommandName, len(written) > 0)
	return st, nil
}

// splitSegment separates one operator-free run of tokens into the invoked
// command, its arguments, leading assignments and redirections.
func splitSegment(seg []string) (name string, args []string, sudo bool, assigns, redirs []string) {
	var words []string
	for i := 0; i < len(seg); i++ {
		tok := seg[i]
		if m := redirectRe.FindString(tok); m != "" {
			redirs = append(redirs, m)
			// "2>&1" carries its target; a bare operator takes the next token.
			if m == tok && i+1 < len(seg) {
				i++
			}
			continue
		}
		words = append(words, tok)
	}
	words = skipKeywords(words)
	for len(words) > 0 {
		if m := assignRe.FindStringSubmatch(words[0]); m != nil {
			assigns = append(assigns, m[1])
			words = words[1:]
			continue
		}
		break
	}
	if len(words) == 0 {
		return "", nil, false, assigns, redirs
	}
	words, sudo = unwrapSudo(words)
	if len(words) == 0 {
		return "", nil, sudo, assigns, redirs
	}
	name = unquote(words[0])
	for _, w := range words[1:] {
		args = append(args, unquote(w))
	}
	return name, args, sudo, assigns, redirs
}

// skipKeywords drops the reserved words in front of the command a segment
// runs. A for or select header runs nothing; a case header yields whatever
// follows its first pattern.
func skipKeywords(words []string) []string {
	for len(words) > 0 {
		w := words[0]
		switch {
		case leadKeywords[w], closers[w], isCasePattern(w):
			words = words[1:]
		case w == "for" || w == "select":
			return nil
		case w == "case":
			i := indexOf(words, "in")
			if i < 0 {
				return nil
			}
			words = words[i+1:]
		default:
			return words
		}
	}
	return words
}

// isCasePattern matches a case arm label such as "start)" or "*)".
func isCasePattern(w string) bool {
	return len(w) > 1 && strings.HasSuffix(w, ")") && !strings.Contains(w, "(")
}

func indexOf(words []string, want string) int {
	for i, w := range words {
		if w == want {
			return i
		}
	}
	return -1
}

func regexCommandType(segments [][]string, ops []string, name string, assigns bool) CommandType {
	lead := ""
	if len(segments) > 0 && len(segments[0]) > 0 {
		lead = segments[0][0]
	}
	switch {
	case lead == "if" || lead == "case":
		return TypeConditional
	case loopKeywords[lead]:
		return TypeLoop
	}

	hasList, hasPipe := false, false
	for _, op := range ops {
		if op == "|" {
			hasPipe = true
		} else {
			hasList = true
		}
	}
	test := isTestName(name)
	switch {
	case hasList && test:
		return TypeConditional
	case hasList:
		return TypeList
	case hasPipe:
		return TypePipeline
	case test:
		return TypeConditional
	case name == "" && assigns:
		return TypeAssignment
	case name == "":
		return TypeUnknown
	case declKeywords[name]:
		return TypeAssignment
	}
	return TypeSimple
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

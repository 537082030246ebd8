package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Strategy derives the structural fields of an Analysis from command text.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, text string) (Structure, error)
}

// StrategyByName returns the strategy registered under name ("ast" or "regex").
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "ast":
		return NewASTStrategy(), nil
	case "regex":
		return NewRegexStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q (supported: ast, regex)", name)
	}
}

// Classifier classifies shell command text. It is safe for concurrent use.
type Classifier struct {
	strategy Strategy
	fallback Strategy
	patterns Patterns
	logger   hclog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithStrategy selects the primary strategy. The regex strategy stays the
// fallback unless the primary already is one.
func WithStrategy(s Strategy) Option {
	return func(c *Classifier) {
		c.strategy = s
	}
}

// WithPatterns replaces the rule tables.
func WithPatterns(p Patterns) Option {
	return func(c *Classifier) {
		c.patterns = p.clone()
	}
}

// WithLogger sets the logger used for fallback and recovery messages.
func WithLogger(l hclog.Logger) Option {
	return func(c *Classifier) {
		c.logger = l
	}
}

// NewClassifier creates a Classifier using the AST strategy with regex
// fallback and the default pattern tables unless overridden.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		strategy: NewASTStrategy(),
		patterns: DefaultPatterns(),
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, isRegex := c.strategy.(*RegexStrategy); !isRegex {
		c.fallback = NewRegexStrategy()
	}
	return c
}

// StrategyName returns the name of the primary strategy.
func (c *Classifier) StrategyName() string {
	return c.strategy.Name()
}

// Classify analyzes one command string. It never panics and never returns
// an error: failures come back as an Analysis with Success false.
func (c *Classifier) Classify(text string) Analysis {
	command := strings.TrimSpace(text)
	if command == "" {
		return Analysis{Command: text, Error: "empty command"}
	}

	st, used, err := c.structure(command)
	if err != nil {
		return Analysis{Command: command, Error: err.Error()}
	}

	a := Analysis{
		Command:          command,
		Success:          true,
		Strategy:         used,
		CommandName:      st.CommandName,
		Arguments:        st.Arguments,
		Commands:         st.Commands,
		CommandType:      st.CommandType,
		VariablesRead:    st.VariablesRead,
		VariablesWritten: st.VariablesWritten,
		Redirections:     st.Redirections,
		UsesSudo:         st.UsesSudo,
	}
	if a.CommandType == "" {
		a.CommandType = TypeUnknown
	}

	a.IsDestructive, a.DestructiveReason = c.destructive(command, st.Commands)
	a.LogicPatterns = matchAll(c.patterns.Logic, command)
	a.HasLogicChecks = len(a.LogicPatterns) > 0
	a.SecurityIssues = matchAll(c.patterns.Security, command)
	return a
}

func (c *Classifier) structure(command string) (Structure, string, error) {
	st, err := c.run(c.strategy, command)
	if err == nil {
		return st, c.strategy.Name(), nil
	}
	if c.fallback == nil {
		return Structure{}, "", err
	}
	c.logger.Debug("falling back to regex strategy", "strategy", c.strategy.Name(), "command", command, "error", err)

	st, ferr := c.run(c.fallback, command)
	if ferr != nil {
		return Structure{}, "", fmt.Errorf("%s: %v; %s: %w", c.strategy.Name(), err, c.fallback.Name(), ferr)
	}
	return st, c.fallback.Name(), nil
}

// run calls a strategy, converting a panic into an error.
func (c *Classifier) run(s Strategy, command string) (st Structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("classifier strategy panicked", "strategy", s.Name(), "command", command, "panic", r)
			err = fmt.Errorf("%s strategy panicked: %v", s.Name(), r)
		}
	}()
	return s.Analyze(context.Background(), command)
}

// destructive runs the destructive pass: the verb table against every
// invoked command, then the regex rules. The first match wins.
func (c *Classifier) destructive(command string, commands []string) (bool, string) {
	for _, name := range commands {
		if reason, ok := c.patterns.destructiveVerb(name); ok {
			return true, reason
		}
	}
	for _, r := range c.patterns.Destructive {
		if r.Matches(command) {
			return true, r.Reason
		}
	}
	return false, ""
}

func matchAll(rules []Rule, text string) []string {
	var out []string
	for _, r := range rules {
		if r.Matches(text) {
			out = append(out, r.Reason)
		}
	}
	return out
}

var sudoValueFlags = map[string]bool{"-u": true, "-g": true, "-U": true, "-C": true, "-p": true, "-h": true, "-r": true, "-t": true}

// unwrapSudo strips a leading sudo with its options and environment
// assignments, returning the wrapped words.
func unwrapSudo(words []string) ([]string, bool) {
	if len(words) == 0 || baseName(unquote(words[0])) != "sudo" {
		return words, false
	}
	rest := words[1:]
	for len(rest) > 0 {
		w := rest[0]
		switch {
		case w == "--":
			return rest[1:], true
		case sudoValueFlags[w]:
			if len(rest) > 1 {
				rest = rest[2:]
			} else {
				rest = nil
			}
		case strings.HasPrefix(w, "-"):
			rest = rest[1:]
		case assignRe.MatchString(w):
			rest = rest[1:]
		default:
			return rest, true
		}
	}
	return rest, true
}

func isTestName(name string) bool {
	switch baseName(name) {
	case "test", "[", "[[":
		return true
	}
	return false
}

func baseName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

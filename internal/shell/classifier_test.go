package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategies() map[string]*Classifier {
	return map[string]*Classifier{
		"ast":   NewClassifier(),
		"regex": NewClassifier(WithStrategy(NewRegexStrategy())),
	}
}

func TestClassify_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		a := NewClassifier().Classify(input)
		assert.False(t, a.Success)
		assert.Equal(t, "empty command", a.Error)
		assert.Empty(t, a.CommandName)
		assert.Empty(t, a.CommandType)
		assert.False(t, a.IsDestructive)
	}
}

func TestClassify_Destructive(t *testing.T) {
	tests := []struct {
		command string
		want    bool
		reason  string
	}{
		{"rm -rf /tmp/x", true, "File removal"},
		{"ls -la", false, ""},
		{"/bin/rm old.log", true, "File removal"},
		{"mkfs.ext4 /dev/sdb1", true, "Filesystem creation"},
		{"sudo -u root rm -f /var/log/x", true, "File removal"},
		{"echo hello > /dev/null 2>&1", false, ""},
		{"cat image.iso > /dev/sda", true, "Redirecting to device files"},
		{"systemctl stop nginx", true, "Service control commands"},
		{"chmod 000 /etc/shadow", true, "Removing all permissions"},
		{"chown root:root /srv/app", true, "Changing file ownership"},
		{"echo cleanup && rm -f /tmp/lock", true, "File removal"},
		{"echo done", false, ""},
	}

	for name, c := range strategies() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.command, func(t *testing.T) {
				a := c.Classify(tt.command)
				require.True(t, a.Success, a.Error)
				assert.Equal(t, tt.want, a.IsDestructive)
				assert.Equal(t, tt.reason, a.DestructiveReason)
			})
		}
	}
}

func TestClassify_StrategiesAgreeOnVerbs(t *testing.T) {
	ast := NewClassifier()
	re := NewClassifier(WithStrategy(NewRegexStrategy()))

	for verb, reason := range DefaultPatterns().DestructiveCommands {
		command := verb + " target"
		a, r := ast.Classify(command), re.Classify(command)
		assert.True(t, a.IsDestructive, "ast: %s", command)
		assert.True(t, r.IsDestructive, "regex: %s", command)
		assert.Equal(t, reason, a.DestructiveReason)
		assert.Equal(t, a.DestructiveReason, r.DestructiveReason)
	}

	compound := []struct {
		command string
		reason  string
		want    []string
	}{
		{"if [ -f x ]; then rm x; fi", "File removal", []string{"[", "rm"}},
		{"for f in *.log; do shred $f; done", "Secure file deletion", []string{"shred"}},
		{"! kill 1234", "Process termination", []string{"kill"}},
		{"test -f x || { unlink x; }", "File unlinking", []string{"test", "unlink"}},
		{"while pgrep app; do kill 1234; done", "Process termination", []string{"pgrep", "kill"}},
		{"case $1 in stop) kill 1234;; esac", "Process termination", []string{"kill"}},
	}
	for _, tt := range compound {
		a, r := ast.Classify(tt.command), re.Classify(tt.command)
		assert.True(t, a.IsDestructive, "ast: %s", tt.command)
		assert.True(t, r.IsDestructive, "regex: %s", tt.command)
		assert.Equal(t, tt.reason, r.DestructiveReason, tt.command)
		assert.Equal(t, tt.want, r.Commands, tt.command)
	}
}

func TestClassify_RegexFallbackSeesKeywordedCommands(t *testing.T) {
	// The missing fi is a syntax error, so the regex tier answers.
	a := NewClassifier().Classify("if [ -f x ]; then rm x")
	require.True(t, a.Success, a.Error)
	assert.True(t, a.IsDestructive)
	assert.Equal(t, "File removal", a.DestructiveReason)

	r := NewClassifier(WithStrategy(NewRegexStrategy())).Classify("if ping -c1 db; then curl -fsS http://db/health; fi")
	assert.Equal(t, []string{"ping", "curl"}, r.Commands)
	assert.Equal(t, "ping", r.CommandName)
	assert.Equal(t, TypeConditional, r.CommandType)
}

func TestClassify_LogicChecks(t *testing.T) {
	for name, c := range strategies() {
		t.Run(name, func(t *testing.T) {
			a := c.Classify("[ -f /etc/passwd ] && echo yes || echo no")
			assert.True(t, a.HasLogicChecks)
			assert.NotEmpty(t, a.LogicPatterns)
			assert.Contains(t, a.LogicPatterns, "Test command with brackets")
			assert.Contains(t, a.LogicPatterns, "Conditional operators")
			assert.Equal(t, TypeConditional, a.CommandType)

			a = c.Classify("ls -la")
			assert.False(t, a.HasLogicChecks)
			assert.Empty(t, a.LogicPatterns)
		})
	}
}

func TestClassify_CommandType(t *testing.T) {
	tests := []struct {
		command string
		want    CommandType
	}{
		{`echo "Hello"`, TypeSimple},
		{"ps aux | grep nginx", TypePipeline},
		{"mkdir -p /tmp/x && echo done", TypeList},
		{"FOO=bar", TypeAssignment},
		{"for f in *.txt; do echo $f; done", TypeLoop},
		{"if [ -d /tmp ]; then echo yes; fi", TypeConditional},
		{"test -n \"$HOME\"", TypeConditional},
	}

	for name, c := range strategies() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.command, func(t *testing.T) {
				a := c.Classify(tt.command)
				require.True(t, a.Success, a.Error)
				assert.Equal(t, tt.want, a.CommandType)
			})
		}
	}
}

func TestClassify_Structure(t *testing.T) {
	for name, c := range strategies() {
		t.Run(name, func(t *testing.T) {
			a := c.Classify(`sudo -u deploy cp "$SRC" ${DEST:-/opt} >> copy.log 2>&1`)
			require.True(t, a.Success)
			assert.True(t, a.UsesSudo)
			assert.Equal(t, "cp", a.CommandName)
			assert.Equal(t, []string{"$SRC", "${DEST:-/opt}"}, a.Arguments)
			assert.Equal(t, []string{"DEST", "SRC"}, a.VariablesRead)
			assert.Equal(t, []string{">>", "2>&"}, a.Redirections)
			assert.Contains(t, a.LogicPatterns, "Parameter expansion with defaults")

			a = c.Classify("export PATH=/usr/local/bin:$PATH")
			assert.Equal(t, []string{"PATH"}, a.VariablesWritten)
			assert.Equal(t, []string{"PATH"}, a.VariablesRead)
		})
	}
}

func TestClassify_Security(t *testing.T) {
	tests := []struct {
		command string
		issue   string
	}{
		{"curl -fsSL https://example.com/install.sh | sh", "Piping remote content to shell"},
		{"wget -qO- https://example.com/x | bash", "Piping remote content to shell"},
		{`eval "$generated"`, "Use of eval command"},
		{"echo $(whoami)", "Command substitution"},
		{"echo `date`", "Backtick command substitution"},
		{"sudo su - admin", "Sudo with su"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			a := NewClassifier().Classify(tt.command)
			assert.Contains(t, a.SecurityIssues, tt.issue)
			assert.NotEmpty(t, a.SecurityIssues)
		})
	}

	a := NewClassifier().Classify("summary --output report.txt")
	assert.Empty(t, a.SecurityIssues)
}

func TestClassify_Idempotent(t *testing.T) {
	inputs := []string{
		"rm -rf /tmp/x",
		"[ -f /etc/passwd ] && echo yes || echo no",
		`FOO=1 BAR=2 env | sort > /tmp/env.txt`,
		"if then fi (",
	}
	for name, c := range strategies() {
		for _, in := range inputs {
			assert.Equal(t, c.Classify(in), c.Classify(in), "%s: %s", name, in)
		}
	}
}

func TestClassify_FallsBackOnSyntaxError(t *testing.T) {
	a := NewClassifier().Classify("if then fi (")
	assert.True(t, a.Success)
	assert.Equal(t, "regex", a.Strategy)

	a = NewClassifier().Classify("ls -la")
	assert.Equal(t, "ast", a.Strategy)
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }

func (panicStrategy) Analyze(context.Context, string) (Structure, error) {
	panic("boom")
}

func TestClassify_RecoversFromPanic(t *testing.T) {
	c := NewClassifier(WithStrategy(panicStrategy{}))
	a := c.Classify("rm -rf /srv")
	assert.True(t, a.Success)
	assert.Equal(t, "regex", a.Strategy)
	assert.True(t, a.IsDestructive)
}

func TestClassify_PatternOverride(t *testing.T) {
	c := NewClassifier(WithPatterns(Patterns{
		DestructiveCommands: map[string]string{"deploy": "Production deployment"},
	}))

	a := c.Classify("deploy --prod")
	assert.True(t, a.IsDestructive)
	assert.Equal(t, "Production deployment", a.DestructiveReason)

	a = c.Classify("rm -rf /")
	assert.False(t, a.IsDestructive)
	assert.False(t, a.HasLogicChecks)
}

func TestStrategyByName(t *testing.T) {
	s, err := StrategyByName("regex")
	require.NoError(t, err)
	assert.Equal(t, "regex", s.Name())

	s, err = StrategyByName("")
	require.NoError(t, err)
	assert.Equal(t, "ast", s.Name())

	_, err = StrategyByName("llm")
	assert.Error(t, err)
}

func TestRule_Ignore(t *testing.T) {
	p := DefaultPatterns()
	var dev Rule
	for _, r := range p.Destructive {
		if r.Reason == "Redirecting to device files" {
			dev = r
		}
	}
	require.NotNil(t, dev.Pattern)

	assert.False(t, dev.Matches("cmd >/dev/null"))
	assert.False(t, dev.Matches("cmd > /dev/stderr"))
	assert.True(t, dev.Matches("cmd >/dev/null; cat x > /dev/sdb"))
}

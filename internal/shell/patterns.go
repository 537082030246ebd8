package shell

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Rule is one entry of a pattern table: a regular expression and the
// human-readable description recorded when it matches.
type Rule struct {
	Pattern *regexp.Regexp
	Reason  string
	// Ignore, when set, discards individual matches that it matches in full.
	// The rule fires only if at least one match survives.
	Ignore *regexp.Regexp
}

// Matches reports whether the rule fires on text.
func (r Rule) Matches(text string) bool {
	if r.Pattern == nil {
		return false
	}
	if r.Ignore == nil {
		return r.Pattern.MatchString(text)
	}
	for _, m := range r.Pattern.FindAllString(text, -1) {
		if !r.Ignore.MatchString(m) {
			return true
		}
	}
	return false
}

// Patterns holds the classifier's static rule tables.
// Values are copied into each Classifier; callers can override any table.
type Patterns struct {
	// DestructiveCommands maps a command verb to the reason it is destructive.
	DestructiveCommands map[string]string
	Destructive         []Rule
	Logic               []Rule
	Security            []Rule
}

// NewRule compiles a rule. Case-insensitive rules get the (?i) flag.
func NewRule(pattern, reason string, caseInsensitive bool) (Rule, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Reason: reason}, nil
}

func mustRule(pattern, reason string, caseInsensitive bool) Rule {
	r, err := NewRule(pattern, reason, caseInsensitive)
	if err != nil {
		panic(err)
	}
	return r
}

var safeDeviceRedirect = regexp.MustCompile(`^>\s*/dev/(null|stdout|stderr|tty|fd/[0-9]+)$`)

// DefaultPatterns returns the built-in rule tables.
func DefaultPatterns() Patterns {
	devRedirect := mustRule(`>\s*/dev/[A-Za-z0-9_./-]*`, "Redirecting to device files", true)
	devRedirect.Ignore = safeDeviceRedirect

	return Patterns{
		DestructiveCommands: map[string]string{
			"rm":      "File removal",
			"rmdir":   "Directory removal",
			"unlink":  "File unlinking",
			"shred":   "Secure file deletion",
			"dd":      "Direct disk operations",
			"fdisk":   "Disk partitioning",
			"parted":  "Disk partitioning",
			"mkfs":    "Filesystem creation",
			"format":  "Disk formatting",
			"mount":   "Filesystem mounting",
			"umount":  "Filesystem unmounting",
			"kill":    "Process termination",
			"killall": "Process termination",
			"pkill":   "Process termination",
		},
		Destructive: []Rule{
			mustRule(`\brm\s+.*-[a-zA-Z]*[rRf]`, "rm with recursive or force flags", true),
			mustRule(`\bdd\s+.*of=`, "dd writing to output device", true),
			devRedirect,
			mustRule(`\bsystemctl\s+(stop|disable|mask)\b`, "Service control commands", true),
			mustRule(`\bchmod\s+(-[a-zA-Z]+\s+)*0?000\b`, "Removing all permissions", true),
			mustRule(`\bchown\s+.*:`, "Changing file ownership", true),
		},
		Logic: []Rule{
			mustRule(`\[\s+.*\s+\]`, "Test command with brackets", false),
			mustRule(`\[\[\s+.*\s+\]\]`, "Extended test command", false),
			mustRule(`\btest\s+`, "Test command", false),
			mustRule(`&&|\|\|`, "Conditional operators", false),
			mustRule(`\bif\s+.*;.*\bthen\b`, "If-then construct", false),
			mustRule(`\bcase\s+.*\bin\b`, "Case statement", false),
			mustRule(`(^|\s)-[a-z]\s+\$?\w+`, "File/directory tests", false),
			mustRule(`\$\?\s*[!=]=|\$\?\s*-(eq|ne)\b`, "Exit code checks", false),
			mustRule(`\[\s*-[nz]\s+"?\$`, "Variable existence checks", false),
			mustRule(`\$\{[^}]*:-[^}]*\}`, "Parameter expansion with defaults", false),
		},
		Security: []Rule{
			mustRule(`\beval\s+`, "Use of eval command", true),
			mustRule(`\bexec\s+`, "Use of exec command", true),
			mustRule(`\$\([^)]*\)`, "Command substitution", false),
			mustRule("`[^`]*`", "Backtick command substitution", false),
			mustRule(`\bcurl\s+.*\|\s*(ba|z|da)?sh\b`, "Piping remote content to shell", true),
			mustRule(`\bwget\s+.*\|\s*(ba|z|da)?sh\b`, "Piping remote content to shell", true),
			mustRule(`\becho\s+.*\|\s*(ba|z|da)?sh\b`, "Piping echo output to shell", true),
			mustRule(`(^|[\s;&|(])su(\s+|$)`, "User switching", true),
			mustRule(`\bsudo\s+su\b`, "Sudo with su", true),
		},
	}
}

// clone returns a deep copy so Classifier instances never share tables.
func (p Patterns) clone() Patterns {
	out := Patterns{
		DestructiveCommands: make(map[string]string, len(p.DestructiveCommands)),
		Destructive:         append([]Rule(nil), p.Destructive...),
		Logic:               append([]Rule(nil), p.Logic...),
		Security:            append([]Rule(nil), p.Security...),
	}
	for k, v := range p.DestructiveCommands {
		out.DestructiveCommands[k] = v
	}
	return out
}

// destructiveVerb looks a command name up in the verb table. The name is
// matched by its base name and by the part before the first dot, so
// /sbin/mkfs.ext4 resolves to mkfs.
func (p Patterns) destructiveVerb(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	base := path.Base(name)
	if reason, ok := p.DestructiveCommands[base]; ok {
		return reason, true
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		if reason, ok := p.DestructiveCommands[base[:i]]; ok {
			return reason, true
		}
	}
	return "", false
}

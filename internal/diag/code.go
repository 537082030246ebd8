// Package diag defines lint diagnostics and the result that aggregates them.
package diag

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code is a stable diagnostic code. The leading letter encodes the default
// severity (E, W, I); the digits group codes into families.
type Code string

// CodeSyntax is reported when a document cannot be decoded.
const CodeSyntax Code = "E101"

// Cross-reference codes.
const (
	CodeUnresolvedScriptRef  Code = "E601"
	CodeUnresolvedCommandRef Code = "E602"
	CodeDuplicateID          Code = "E603"
	CodeScriptCycle          Code = "E501"
	CodeCommandCycle         Code = "E502"
	CodeUnreachable          Code = "W601"
)

// Business rule codes.
const (
	CodeDestructiveUnmarked   Code = "E301"
	CodeDestructiveOvermarked Code = "W301"
	CodeCannotAnalyze         Code = "W302"
	CodeDestructiveSecurity   Code = "W303"
	CodeLogicCheck            Code = "W401"
	CodeNamingInconsistent    Code = "W501"
	CodeShortMetadataIntent   Code = "W502"
	CodeShortIntent           Code = "W503"
	CodeRedundantIntent       Code = "W504"
)

// Semantic hygiene codes.
const (
	CodeNoCommandName Code = "W201"
	CodeSudo          Code = "W203"
	CodeSecurityIssue Code = "W210"
	CodeCredential    Code = "W211"
	CodeNetwork       Code = "W212"
	CodeCommandType   Code = "I200"
	CodeVarsRead      Code = "I201"
	CodeVarsWritten   Code = "I202"
	CodeRedirections  Code = "I203"
)

var families = map[Code]string{
	CodeSyntax:                "syntax",
	CodeDuplicateID:           "duplicate-identifier",
	CodeUnresolvedScriptRef:   "unresolved-reference",
	CodeUnresolvedCommandRef:  "unresolved-reference",
	CodeScriptCycle:           "cycle-detected",
	CodeCommandCycle:          "cycle-detected",
	CodeUnreachable:           "unreachable-element",
	CodeDestructiveUnmarked:   "destructive-unmarked",
	CodeDestructiveOvermarked: "destructive-overmarked",
	CodeCannotAnalyze:         "classifier-degraded",
	CodeDestructiveSecurity:   "security-concern",
	CodeLogicCheck:            "logic-check-promotable",
	CodeNamingInconsistent:    "naming-inconsistency",
	CodeShortMetadataIntent:   "intent-quality",
	CodeShortIntent:           "intent-quality",
	CodeRedundantIntent:       "intent-quality",
	CodeNoCommandName:         "semantic-hygiene",
	CodeSudo:                  "semantic-hygiene",
	CodeSecurityIssue:         "security-concern",
	CodeCredential:            "security-concern",
	CodeNetwork:               "semantic-hygiene",
	CodeCommandType:           "semantic-info",
	CodeVarsRead:              "semantic-info",
	CodeVarsWritten:           "semantic-info",
	CodeRedirections:          "semantic-info",
}

var descriptions = map[Code]string{
	CodeSyntax:                "Document could not be decoded",
	CodeDuplicateID:           "Identifier is defined more than once",
	CodeUnresolvedScriptRef:   "Script reference does not resolve to a known ID",
	CodeUnresolvedCommandRef:  "Conditional source does not resolve to a known ID",
	CodeScriptCycle:           "Script reference arrays form a cycle",
	CodeCommandCycle:          "Conditional command triggers form a loop",
	CodeUnreachable:           "Element is never referenced",
	CodeDestructiveUnmarked:   "Destructive command is not marked destructive",
	CodeDestructiveOvermarked: "Command is marked destructive but appears safe",
	CodeCannotAnalyze:         "Command could not be analyzed",
	CodeDestructiveSecurity:   "Destructive command has a security concern",
	CodeLogicCheck:            "Command performs a logic check and could be a validation",
	CodeNamingInconsistent:    "Identifiers mix naming conventions",
	CodeShortMetadataIntent:   "Script intent is too short",
	CodeShortIntent:           "Node intent is too short",
	CodeRedundantIntent:       "Intent only repeats the identifier",
	CodeNoCommandName:         "Command name could not be determined",
	CodeSudo:                  "Command uses sudo",
	CodeSecurityIssue:         "Command matches a security risk pattern",
	CodeCredential:            "Command may contain a hard-coded credential",
	CodeNetwork:               "Command performs a network operation",
	CodeCommandType:           "Command type",
	CodeVarsRead:              "Variables read",
	CodeVarsWritten:           "Variables written",
	CodeRedirections:          "Redirections",
}

// Family returns the defect family the code belongs to.
func (c Code) Family() string {
	if f, ok := families[c]; ok {
		return f
	}
	return "other"
}

// Description returns a one-line description of the code.
func (c Code) Description() string {
	return descriptions[c]
}

// Severity returns the default severity encoded in the code.
func (c Code) Severity() Severity {
	if len(c) > 0 {
		switch c[0] {
		case 'E':
			return SeverityError
		case 'I':
			return SeverityInfo
		}
	}
	return SeverityWarning
}

// Codes returns every known code.
func Codes() []Code {
	out := make([]Code, 0, len(families))
	for c := range families {
		out = append(out, c)
	}
	return out
}

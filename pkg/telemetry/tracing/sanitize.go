package tracing

import "regexp"

// maxStatementLength caps sanitized statements stored on spans.
const maxStatementLength = 1000

// credentialPatterns mask credential literals inside recorded statements
// so secrets never leak into trace exports.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password\s*=\s*)'[^']*'`),
	regexp.MustCompile(`(?i)(password\s*=\s*)[^\s,;)]+`),
	regexp.MustCompile(`(?i)(token\s*=\s*)'[^']*'`),
	regexp.MustCompile(`(?i)(token\s*=\s*)[^\s,;)]+`),
	regexp.MustCompile(`(?i)(secret\s*=\s*)'[^']*'`),
	regexp.MustCompile(`(?i)(secret\s*=\s*)[^\s,;)]+`),
}

// SanitizeStatement masks password=, token= and secret= literals in a
// statement and truncates the result to 1000 characters.
func SanitizeStatement(statement string) string {
	sanitized := statement
	for _, p := range credentialPatterns {
		sanitized = p.ReplaceAllString(sanitized, "$1'***'")
	}

	if len(sanitized) > maxStatementLength {
		sanitized = sanitized[:maxStatementLength]
	}
	return sanitized
}

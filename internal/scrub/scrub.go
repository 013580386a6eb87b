// Package scrub removes secret-looking material from response text before
// it is persisted to the audit log. Model responses routinely quote
// configuration, and the log must never become a credential store.
package scrub

import "regexp"

var (
	// .env style VAR=value lines; the VAR= part survives
	envRegex = regexp.MustCompile(`(?m)^([A-Z_]+)=\S+$`)
	// JWT heuristic
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	// OpenAI and generic sk- keys
	skRegex = regexp.MustCompile(`sk-[a-zA-Z0-9\-]{20,}`)
	// Google API keys
	aizaRegex = regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)
	// GitHub personal access tokens
	ghpRegex = regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`)
	// AWS access key IDs
	akiaRegex = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	// Authorization header values quoted verbatim in responses
	bearerRegex = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{16,}=*`)
	// Slack bot/user/app tokens
	slackRegex = regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`)
)

// Clean scrubs secrets from text bound for durable storage.
func Clean(input string) string {
	input = envRegex.ReplaceAllString(input, "${1}=[REDACTED]")
	input = skRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = jwtRegex.ReplaceAllString(input, "[REDACTED_JWT]")
	input = aizaRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = ghpRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = akiaRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = bearerRegex.ReplaceAllString(input, "[REDACTED_TOKEN]")
	input = slackRegex.ReplaceAllString(input, "[REDACTED_TOKEN]")
	return input
}

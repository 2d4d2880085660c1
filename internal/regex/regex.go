package regex

import "regexp"

var (
	// User content inside a composed prompt
	OriginalPrompt = regexp.MustCompile(`(?s)Original prompt to enhance:\n"(.*)"\n\nOutput format instructions:`)

	// Bearer credentials in an Authorization header
	BearerToken = regexp.MustCompile(`^(?i:bearer)\s+(\S+)$`)
)

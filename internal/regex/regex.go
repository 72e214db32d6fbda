package regex

import "regexp"

var (
	// Pull request URLs
	GitHubPRURL    = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)(?:[/?#].*)?$`)
	GitHubAPIPRURL = regexp.MustCompile(`^https?://api\.github\.com/repos/([^/\s]+)/([^/\s]+)/pulls/(\d+)(?:[/?#].*)?$`)

	// PR description walkthrough
	WalkthroughHeading = regexp.MustCompile(`(?im)^#{1,4}\s*\**\s*(?:changes\s+)?walkthrough\b.*$`)
	WalkthroughEntry   = regexp.MustCompile("^\\s*[-*|]\\s*`([^`]+)`\\s*[:|]\\s*(.+?)\\s*\\|?\\s*$")

	// Prompt templates
	BarePlaceholder = regexp.MustCompile(`\{\{(-?\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*-?)\}\}`)
	BareCondition   = regexp.MustCompile(`\{\{(-?\s*)((?:else\s+)?(?:if|with|range)\s+(?:not\s+)?)([A-Za-z_][A-Za-z0-9_]*)(\s*-?)\}\}`)
	MissingMapKey   = regexp.MustCompile(`map has no entry for key "([^"]+)"`)
	UndefinedField  = regexp.MustCompile(`can't evaluate field ([A-Za-z_][A-Za-z0-9_]*)`)
)

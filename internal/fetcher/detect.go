package fetcher

import (
	"net/url"
	"regexp"
	"strings"
)

// Known wiki domains. Self-hosted Confluence domains can be appended
// here.
var wikiDomains = []string{
	"atlassian.net",
}

// Path shapes of Confluence page URLs.
var wikiPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/wiki/`),
	regexp.MustCompile(`^/display/`),
	regexp.MustCompile(`^/pages/viewpage\.action`),
	regexp.MustCompile(`^/spaces/`),
}

// IsWikiLink reports whether link points at a Confluence-style wiki
// page. Both the host and the path shape must match; anything else is
// treated as a generic web page.
func IsWikiLink(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	path := strings.ToLower(parsed.Path)

	domainMatch := false
	for _, d := range wikiDomains {
		if strings.Contains(host, d) {
			domainMatch = true
			break
		}
	}
	if !domainMatch {
		return false
	}

	for _, p := range wikiPathPatterns {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}

package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	absoluteURLRe  = regexp.MustCompile(`(?i)(https?://[^'";]+)`)
	vistaPreviaRe  = regexp.MustCompile(`(?i)['"](/?PLIEGO/VistaPrevia[^'";]+)['"]`)
	anyVistaPrevRe = regexp.MustCompile(`(?i)['"](/?[^'";]*VistaPrevia[^'";]+)['"]`)
)

// NormalizeDetailURL turns a listing href into a fetchable detail URL.
//
// COMPR.AR renders detail links three ways: javascript:window.open('...')
// wrappers, ~/-prefixed relative paths, and plain absolute URLs. Returns ""
// when the href carries no usable URL, e.g. a bare __doPostBack call.
func NormalizeDetailURL(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		if m := absoluteURLRe.FindStringSubmatch(href); m != nil {
			return m[1]
		}
		if m := vistaPreviaRe.FindStringSubmatch(href); m != nil {
			return joinURL(baseURL, m[1])
		}
		if m := anyVistaPrevRe.FindStringSubmatch(href); m != nil {
			return joinURL(baseURL, m[1])
		}
		return ""
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	return joinURL(baseURL, strings.TrimLeft(href, "~"))
}

func joinURL(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	postbackRe      = regexp.MustCompile(`__doPostBack\('([^']*)','([^']*)'\)`)
	pagerPostbackRe = regexp.MustCompile(`__doPostBack\('([^']+)',\s*'Page\$\d+'\)`)
)

// Postback is a parsed ASP.NET __doPostBack invocation.
type Postback struct {
	Target   string
	Argument string
}

// ParsePostback extracts the event target and argument from a
// javascript:__doPostBack(...) href.
func ParsePostback(href string) (Postback, bool) {
	m := postbackRe.FindStringSubmatch(strings.TrimSpace(href))
	if m == nil {
		return Postback{}, false
	}
	return Postback{Target: m[1], Argument: m[2]}, true
}

// CollectFormState gathers the hidden inputs of the page form. ASP.NET
// rejects postbacks without __VIEWSTATE and friends.
func CollectFormState(doc *goquery.Document) url.Values {
	form := url.Values{}
	doc.Find("form").First().Find(`input[type="hidden"]`).Each(func(_ int, inp *goquery.Selection) {
		name, ok := inp.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := inp.Attr("value")
		form.Set(name, value)
	})
	return form
}

// PostbackForm builds the form body that replays a postback on a page.
func PostbackForm(doc *goquery.Document, pb Postback) url.Values {
	form := CollectFormState(doc)
	form.Set("__EVENTTARGET", pb.Target)
	form.Set("__EVENTARGUMENT", pb.Argument)
	form.Set("__LASTFOCUS", "")
	return form
}

// PagerTarget finds the grid control used for Page$N postback pagination.
// Returns "" when the page has no postback pager.
func PagerTarget(doc *goquery.Document) string {
	target := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := pagerPostbackRe.FindStringSubmatch(href); m != nil {
			target = m[1]
			return false
		}
		return true
	})
	return target
}

// SimplePagerLinks finds direct links to further listing pages: anchors whose
// text is a bare page number. Deduplicated, in document order.
func SimplePagerLinks(doc *goquery.Document, baseURL string) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if text == "" || !isDigits(text) {
			return
		}
		href, _ := a.Attr("href")
		if !strings.Contains(href, "Compras.aspx") {
			return
		}
		full := joinURL(baseURL, href)
		if !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
	})
	return links
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

package scraper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/internal/extract"
	"arcompras/comprasworker/internal/record"
	"arcompras/comprasworker/logger"
)

// listingGridMarker appears in the listing markup. A postback response that
// still contains it means the detail view never opened.
const listingGridMarker = "GridListaPliegosAperturaProxima"

// httpNavigator drives COMPR.AR over plain HTTP, replaying the ASP.NET
// postbacks the site uses for pagination and for rows without a direct link.
type httpNavigator struct {
	cfg     *config.Config
	session *helpers.Session
	log     *logger.Logger

	current     *goquery.Document
	simpleLinks []string
	pagerTarget string
	totalPages  int
}

func newHTTPNavigator(cfg *config.Config, session *helpers.Session, log *logger.Logger) *httpNavigator {
	return &httpNavigator{cfg: cfg, session: session, log: log}
}

func (n *httpNavigator) Start(ctx context.Context) (*goquery.Document, error) {
	resp, err := n.session.Get(ctx, n.cfg.ComprarListURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	n.current = doc
	n.simpleLinks = SimplePagerLinks(doc, n.cfg.ComprarBaseURL)
	n.pagerTarget = PagerTarget(doc)

	// The postback pager needs a page count: derive it from the results
	// banner and the size of page one.
	total := ParseTotalResults(doc)
	pageSize := len(ListingRows(doc))
	if total > 0 && pageSize > 0 {
		n.totalPages = (total + pageSize - 1) / pageSize
	}

	return doc, nil
}

func (n *httpNavigator) NextPage(ctx context.Context, page int) (*goquery.Document, bool, error) {
	if len(n.simpleLinks) > 0 {
		idx := page - 2
		if idx < 0 || idx >= len(n.simpleLinks) {
			return nil, false, nil
		}
		resp, err := n.session.Get(ctx, n.simpleLinks[idx])
		if err != nil {
			return nil, false, err
		}
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, false, err
		}
		n.current = doc
		return doc, true, nil
	}

	if n.pagerTarget == "" || page > n.totalPages {
		return nil, false, nil
	}

	form := PostbackForm(n.current, Postback{
		Target:   n.pagerTarget,
		Argument: fmt.Sprintf("Page$%d", page),
	})
	resp, err := n.session.PostForm(ctx, n.cfg.ComprarListURL, form)
	if err != nil {
		return nil, false, err
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, false, err
	}
	n.current = doc
	return doc, true, nil
}

func (n *httpNavigator) Detail(ctx context.Context, row record.ListingRow) (*extract.Page, string, error) {
	if detailURL := NormalizeDetailURL(row.DetailHref, n.cfg.ComprarBaseURL); detailURL != "" {
		resp, err := n.session.Get(ctx, detailURL)
		if err != nil {
			return nil, "", err
		}
		page, err := extract.NewPageFromReader(resp.Body)
		if err != nil {
			return nil, "", err
		}
		return page, resp.FinalURL, nil
	}

	// No resolvable URL: the row link is a bare __doPostBack, replay it
	pb, ok := ParsePostback(row.DetailHref)
	if !ok {
		return nil, "", ErrDetailUnavailable
	}

	n.log.Debug().Str("proceso", row.ProcessNumber).Str("target", pb.Target).Msg("Opening detail via postback")

	resp, err := n.session.PostForm(ctx, n.cfg.ComprarListURL, PostbackForm(n.current, pb))
	if err != nil {
		return nil, "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	html := string(body)
	if strings.Contains(html, listingGridMarker) {
		// Still on the listing: the postback did not open the detail
		return nil, "", ErrDetailUnavailable
	}

	page, err := extract.NewPageFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", err
	}
	return page, resp.FinalURL, nil
}

func (n *httpNavigator) Close() {}

package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/internal/browser"
	"arcompras/comprasworker/internal/extract"
	"arcompras/comprasworker/internal/record"
	"arcompras/comprasworker/logger"
)

const (
	gridXPath     = `//table[.//th[contains(normalize-space(.), 'Número de Proceso')]]`
	verTodosXPath = `//a[contains(normalize-space(.), 'Ver todos')]`

	navTimeout  = 30 * time.Second
	gridTimeout = 20 * time.Second
)

// browserNavigator drives COMPR.AR through a headless Chrome tab, clicking
// through the grid like a user. Needed when the site serves the listing only
// to script-capable clients.
type browserNavigator struct {
	cfg  *config.Config
	log  *logger.Logger
	sess *browser.Session
}

func newBrowserNavigator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*browserNavigator, error) {
	sess, err := browser.NewSession(ctx, cfg.ChromeHeadless, cfg.ChromePath)
	if err != nil {
		return nil, err
	}
	return &browserNavigator{cfg: cfg, log: log, sess: sess}, nil
}

func (n *browserNavigator) Start(_ context.Context) (*goquery.Document, error) {
	if err := n.sess.Navigate(n.cfg.ComprarBaseURL+"/Default.aspx", navTimeout); err != nil {
		return nil, err
	}

	// The landing page shows upcoming openings; "Ver todos" expands to the
	// full grid.
	if err := n.sess.ClickXPath(verTodosXPath, navTimeout); err != nil {
		return nil, fmt.Errorf("failed to open full listing: %w", err)
	}
	if err := n.sess.WaitReadyXPath(gridXPath, gridTimeout); err != nil {
		return nil, fmt.Errorf("listing grid never appeared: %w", err)
	}
	n.sess.Sleep(time.Second)

	return n.pageDoc()
}

func (n *browserNavigator) NextPage(_ context.Context, page int) (*goquery.Document, bool, error) {
	pagerXPath := fmt.Sprintf(`//a[normalize-space(text())='%d']`, page)
	if err := n.sess.ClickXPath(pagerXPath, 10*time.Second); err != nil {
		// No link with that page number: pagination is done
		return nil, false, nil
	}
	if err := n.sess.WaitReadyXPath(gridXPath, gridTimeout); err != nil {
		return nil, false, err
	}
	n.sess.Sleep(time.Second)

	doc, err := n.pageDoc()
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (n *browserNavigator) Detail(_ context.Context, row record.ListingRow) (*extract.Page, string, error) {
	oldURL, err := n.sess.Location()
	if err != nil {
		return nil, "", err
	}

	linkXPath := fmt.Sprintf(`//a[normalize-space(text())='%s']`, row.ProcessNumber)
	if err := n.sess.ClickXPath(linkXPath, 10*time.Second); err != nil {
		return nil, "", ErrDetailUnavailable
	}
	if err := n.sess.WaitLocationChange(oldURL, 15*time.Second); err != nil {
		return nil, "", ErrDetailUnavailable
	}

	html, err := n.sess.HTML(navTimeout)
	if err != nil {
		return nil, "", err
	}
	detailURL, err := n.sess.Location()
	if err != nil {
		return nil, "", err
	}

	// Return to the grid before parsing, the caller continues iterating rows
	if err := n.sess.Back(navTimeout); err != nil {
		return nil, "", err
	}
	if err := n.sess.WaitReadyXPath(gridXPath, gridTimeout); err != nil {
		return nil, "", err
	}

	page, err := extract.NewPageFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", err
	}
	return page, detailURL, nil
}

func (n *browserNavigator) Close() {
	n.sess.Close()
}

func (n *browserNavigator) pageDoc() (*goquery.Document, error) {
	html, err := n.sess.HTML(navTimeout)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

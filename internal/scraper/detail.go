package scraper

import (
	"context"
	"strings"

	"arcompras/comprasworker/helpers"
	"arcompras/comprasworker/internal/extract"
	"arcompras/comprasworker/internal/record"
	"arcompras/comprasworker/logger"
)

// COMPR.AR labels its detail fields two ways: a label line followed by the
// value on the next line, or "Label: value" on a single line.
const labelLookahead = 6

// ExtractProcessFields parses a COMPR.AR detail page into a record. When the
// page itself lists no line items but links a pliego, the pliego page is
// fetched over session to fill them in.
func ExtractProcessFields(ctx context.Context, p *extract.Page, pageURL, baseURL string, session *helpers.Session, log *logger.Logger) record.ProcessRecord {
	lines := p.Lines()

	rec := record.ProcessRecord{
		ProcessNumber: extract.FindAfterLabel(lines, "Número de Procedimiento", labelLookahead),
		FileNumber:    extract.FindAfterLabel(lines, "Número de Expediente", labelLookahead),
		ProcessName:   extract.FindAfterLabel(lines, "Objeto", labelLookahead),
		ProcessType:   extract.FindAfterLabel(lines, "Tipo de Procedimiento", labelLookahead),
		Status:        extract.FindColonValue(lines, "Estado"),
		OpeningDate:   extract.FindColonValue(lines, "Fecha de apertura"),
		ExecutingUnit: extract.FindAfterLabel(lines, "Unidad Operativa de Contrataciones", labelLookahead),
		SAF:           extract.FindAfterLabel(lines, "Servicio Administrativo Financiero", labelLookahead),
		DetailURL:     pageURL,
	}

	att := extract.PliegoAttachment(p, baseURL)
	rec.PliegoName = att.Name
	rec.PliegoURL = att.URL

	rec.ProductDetail = extract.ProductDetail(p)
	if rec.ProductDetail == "" && att.URL != "" && session != nil {
		rec.ProductDetail = lineItemsFromPliego(ctx, session, att.URL, log)
	}

	return rec
}

// lineItemsFromPliego loads the tender document page and extracts line items
// from its text. PDF and binary pliegos yield nothing.
func lineItemsFromPliego(ctx context.Context, session *helpers.Session, pliegoURL string, log *logger.Logger) string {
	resp, err := session.Get(ctx, pliegoURL)
	if err != nil {
		log.Warn().Str("url", pliegoURL).Err(err).Msg("Failed to fetch pliego")
		return ""
	}

	contentType := strings.ToLower(resp.ContentType)
	if strings.Contains(contentType, "pdf") || strings.Contains(contentType, "octet-stream") {
		log.Debug().Str("url", pliegoURL).Msg("Pliego is a binary document, skipping line items")
		return ""
	}

	page, err := extract.NewPageFromReader(resp.Body)
	if err != nil {
		log.Warn().Str("url", pliegoURL).Err(err).Msg("Failed to parse pliego page")
		return ""
	}

	if items, ok := extract.LineItemsFromText(page); ok {
		return items
	}
	return ""
}

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcompras/comprasworker/config"
)

func detailHTML(i int) string {
	return fmt.Sprintf(`<html><body>
		<div>Número de Procedimiento</div><div>100-%04d-LPU25</div>
		<div>Número de Expediente</div><div>EX-2025-%07d-APN</div>
		<div>Objeto</div><div>Adquisición de notebooks lote %d</div>
		<div>Tipo de Procedimiento</div><div>Licitación Pública</div>
		<div>Estado: Publicado</div>
		<div>Fecha de apertura: 15/10/2025 12:00</div>
		<div>Unidad Operativa de Contrataciones</div><div>UOC %d</div>
		<div>Servicio Administrativo Financiero</div><div>SAF %d</div>
		<div>Detalle de productos o servicios</div>
		<div>1 | Notebook 15 pulgadas | 10 unidades</div>
		<div>#### Anexos</div>
	</body></html>`, i, i, i, i, i)
}

// newComprarServer serves a two-page listing with 15 processes. Detail 7
// always fails with a server error.
func newComprarServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/Compras.aspx", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.URL.Query().Get("page") == "2" {
			rows := []string{gridRow(13), gridRow(14), gridRow(15)}
			fmt.Fprint(w, gridHTML(rows, ""))
			return
		}
		var rows []string
		for i := 1; i <= 12; i++ {
			rows = append(rows, gridRow(i))
		}
		banner := `<span>Se han encontrado (15) resultados</span>
			<a href="/Compras.aspx?qs=x&page=2">2</a>`
		fmt.Fprint(w, gridHTML(rows, banner))
	})
	mux.HandleFunc("/detalle/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/detalle/")
		if id == "7" {
			http.Error(w, "error interno", http.StatusInternalServerError)
			return
		}
		var i int
		fmt.Sscanf(id, "%d", &i)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, detailHTML(i))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func comprarTestConfig(srv *httptest.Server) *config.Config {
	return &config.Config{
		ComprarBaseURL: srv.URL,
		ComprarListURL: srv.URL + "/Compras.aspx?qs=x",
		HTTPTimeout:    5 * time.Second,
	}
}

func TestComprarScrape(t *testing.T) {
	srv := newComprarServer(t)
	s := NewComprar(comprarTestConfig(srv), nil)

	var progress []int
	job := Job{
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		OutputDir: t.TempDir(),
		Progress:  func(pct int) { progress = append(progress, pct) },
	}

	result, err := s.Scrape(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, 15, result.Count)
	assert.False(t, result.Cancelled)
	require.Len(t, result.Records, 15)

	first := result.Records[0]
	assert.Equal(t, "100-0001-LPU25", first.ProcessNumber)
	assert.Equal(t, "EX-2025-0000001-APN", first.FileNumber)
	assert.Equal(t, "Adquisición de notebooks lote 1", first.ProcessName)
	assert.Equal(t, "Publicado", first.Status)
	assert.Equal(t, "15/10/2025 12:00", first.OpeningDate)
	assert.Equal(t, "UOC 1", first.ExecutingUnit)
	assert.Equal(t, "1 | Notebook 15 pulgadas | 10 unidades", first.ProductDetail)
	assert.Equal(t, srv.URL+"/detalle/1", first.DetailURL)
	assert.Equal(t, "COMPRAR", first.Origin)
	assert.True(t, first.IsTIC)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2025, *first.Year)

	// Detail 7 failed: the record keeps the listing fields only
	degraded := result.Records[6]
	assert.Equal(t, "100-0007-LPU25", degraded.ProcessNumber)
	assert.Equal(t, "Proceso número 7", degraded.ProcessName)
	assert.Equal(t, "Publicado", degraded.Status)
	assert.Empty(t, degraded.FileNumber)
	assert.Empty(t, degraded.ProductDetail)
	assert.Equal(t, srv.URL+"/detalle/7", degraded.DetailURL)
	assert.False(t, degraded.IsTIC)

	// Second listing page was followed
	assert.Equal(t, "100-0015-LPU25", result.Records[14].ProcessNumber)

	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	last := -1
	for _, p := range progress {
		assert.Greater(t, p, last)
		last = p
	}

	require.NotEmpty(t, result.OutputFile)
	assert.Contains(t, result.OutputFile, "comprar_tics_20251001_20251015.xlsx")
	_, statErr := os.Stat(result.OutputFile)
	assert.NoError(t, statErr)
}

func TestComprarScrapeCancellation(t *testing.T) {
	srv := newComprarServer(t)
	s := NewComprar(comprarTestConfig(srv), nil)

	var mu sync.Mutex
	done := 0
	var progress []int
	job := Job{
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		OutputDir: t.TempDir(),
		Progress: func(pct int) {
			mu.Lock()
			done++
			progress = append(progress, pct)
			mu.Unlock()
		},
		IsCancelled: func() bool {
			mu.Lock()
			defer mu.Unlock()
			return done >= 5
		},
	}

	result, err := s.Scrape(context.Background(), job)
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.Equal(t, 5, result.Count)
	// A cancelled run never reports completion
	for _, p := range progress {
		assert.Less(t, p, 100)
	}
	// What was collected is still exported
	assert.NotEmpty(t, result.OutputFile)
}

func TestComprarScrapeInvalidRange(t *testing.T) {
	srv := newComprarServer(t)
	s := NewComprar(comprarTestConfig(srv), nil)

	job := Job{
		StartDate: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := s.Scrape(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end date is before start date")
}

type blockedCache struct{}

func (blockedCache) Get(key string) ([]byte, error)          { return []byte("1"), nil }
func (blockedCache) Set(string, []byte, time.Duration) error { return nil }
func (blockedCache) Delete(string) error                     { return nil }

func TestComprarScrapeRateLimitGuard(t *testing.T) {
	srv := newComprarServer(t)
	cfg := comprarTestConfig(srv)
	cfg.BlockTime = 5 * time.Minute
	s := NewComprar(cfg, blockedCache{})

	job := Job{
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
	}

	_, err := s.Scrape(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestComprarScrapeMaxPages(t *testing.T) {
	srv := newComprarServer(t)
	cfg := comprarTestConfig(srv)
	cfg.MaxPages = 1
	s := NewComprar(cfg, nil)

	job := Job{
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		OutputDir: t.TempDir(),
	}

	result, err := s.Scrape(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Count)
}

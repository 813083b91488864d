package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("Referer"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hola, Mundo!</body></html>"))
	}))
	defer server.Close()

	session := NewSession(10 * time.Second)
	defer session.Close()

	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Hola, Mundo!")
	assert.Contains(t, resp.ContentType, "text/html")
}

func TestSessionGetNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Licitación" with 0xF3 as the ISO-8859-1 ó
		w.Write([]byte("<html><body>Licitaci\xf3n</body></html>"))
	}))
	defer server.Close()

	session := NewSession(10 * time.Second)
	defer session.Close()

	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Licitación")
}

func TestSessionGetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	session := NewSession(10 * time.Second)
	defer session.Close()

	_, err := session.Get(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")

	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = session.Get(context.Background(), serverRateLimited.URL)
	assert.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestSessionPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ctl00$grid", r.PostFormValue("__EVENTTARGET"))
		assert.Equal(t, "Page$2", r.PostFormValue("__EVENTARGUMENT"))
		w.Write([]byte("<html><body>pagina 2</body></html>"))
	}))
	defer server.Close()

	session := NewSession(10 * time.Second)
	defer session.Close()

	form := map[string][]string{
		"__EVENTTARGET":   {"ctl00$grid"},
		"__EVENTARGUMENT": {"Page$2"},
	}
	resp, err := session.PostForm(context.Background(), server.URL, form)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pagina 2")
	assert.Contains(t, resp.FinalURL, server.URL)
}

func TestSessionCookiesPersist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "abc123"})
			w.Write([]byte("ok"))
		default:
			cookie, err := r.Cookie("ASP.NET_SessionId")
			require.NoError(t, err)
			assert.Equal(t, "abc123", cookie.Value)
			w.Write([]byte("ok"))
		}
	}))
	defer server.Close()

	session := NewSession(10 * time.Second)
	defer session.Close()

	_, err := session.Get(context.Background(), server.URL+"/set")
	require.NoError(t, err)
	_, err = session.Get(context.Background(), server.URL+"/check")
	require.NoError(t, err)
}

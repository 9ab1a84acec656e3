package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "8.27", r.FormValue("paperWidth"))
		require.Equal(t, "true", r.FormValue("printBackground"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		require.Equal(t, "index.html", header.Filename)
		html, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "<h1>INV-202507-0001</h1>", string(html))

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/").RenderHTML(context.Background(), "<h1>INV-202507-0001</h1>")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(pdf))
}

func TestRenderHTMLReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<p>x</p>")
	require.ErrorIs(t, err, ErrRender)
	require.Contains(t, err.Error(), "chromium crashed")
}

func TestWithPageOverridesLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "11.7", r.FormValue("paperWidth"))
		require.Empty(t, r.FormValue("marginTop"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithPage(PageOptions{PaperWidth: "11.7", PaperHeight: "8.27"})
	_, err := client.RenderHTML(context.Background(), "<p>x</p>")
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()
	require.NoError(t, NewClient(srv.URL).Ping(context.Background()))

	srv.Close()
	require.Error(t, NewClient(srv.URL).Ping(context.Background()))
}

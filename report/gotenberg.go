package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrRender is wrapped by every conversion failure reported by Gotenberg.
var ErrRender = errors.New("report: render failed")

// PageOptions controls the Chromium page layout. Sizes are in inches.
type PageOptions struct {
	PaperWidth   string
	PaperHeight  string
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	MarginRight  string
}

// A4 portrait with a 1cm margin, used for invoices.
var A4 = PageOptions{
	PaperWidth:   "8.27",
	PaperHeight:  "11.7",
	MarginTop:    "0.4",
	MarginBottom: "0.4",
	MarginLeft:   "0.4",
	MarginRight:  "0.4",
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	page       PageOptions
}

// NewClient constructs a new client that renders A4 pages.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		page: A4,
	}
}

// WithPage returns a copy of c using page for subsequent renders.
func (c *Client) WithPage(page PageOptions) *Client {
	cp := *c
	cp.page = page
	return &cp
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts an HTML document into a PDF using the Chromium route.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for field, value := range c.page.fields() {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("printBackground", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRender, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return io.ReadAll(resp.Body)
}

func (p PageOptions) fields() map[string]string {
	out := make(map[string]string, 6)
	add := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	add("paperWidth", p.PaperWidth)
	add("paperHeight", p.PaperHeight)
	add("marginTop", p.MarginTop)
	add("marginBottom", p.MarginBottom)
	add("marginLeft", p.MarginLeft)
	add("marginRight", p.MarginRight)
	return out
}

package invoices

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/web"
)

// HTMLConverter turns an HTML document into PDF bytes. report.Client
// satisfies it.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ErrPDFUnavailable is returned when no converter is configured.
var ErrPDFUnavailable = errors.New("invoice pdf rendering not configured")

// PDFRenderer fills the invoice template and hands it to the converter.
type PDFRenderer struct {
	converter HTMLConverter
	tmpl      *template.Template
}

// NewPDFRenderer parses the embedded invoice template.
func NewPDFRenderer(converter HTMLConverter) (*PDFRenderer, error) {
	tmpl, err := template.New("invoice.html").Funcs(template.FuncMap{
		"idr":  shared.FormatIDR,
		"date": formatDate,
	}).ParseFS(web.Templates, "templates/invoice.html")
	if err != nil {
		return nil, err
	}
	return &PDFRenderer{converter: converter, tmpl: tmpl}, nil
}

// HTML renders the invoice document.
func (p *PDFRenderer) HTML(inv Invoice) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, inv); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render produces the PDF bytes for inv.
func (p *PDFRenderer) Render(ctx context.Context, inv Invoice) ([]byte, error) {
	if p == nil || p.converter == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := p.HTML(inv)
	if err != nil {
		return nil, err
	}
	return p.converter.RenderHTML(ctx, html)
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return "-"
		}
		return t.Format("02 Jan 2006")
	}
	return ""
}

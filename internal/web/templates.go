// ABOUTME: Template rendering for the index form and the link info page
// ABOUTME: Parses embedded templates once and renders them with typed page data

package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
)

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Stylesheet is the CSS served at /styles.css
var Stylesheet = mustReadFile("templates/styles.css")

type indexData struct {
	Domain string
}

type infoData struct {
	Domain string
	Link   string
	Target string
	QR     template.HTML
}

// RenderIndex writes the link creation form.
func RenderIndex(w io.Writer, domain string) error {
	return pages.ExecuteTemplate(w, "index.html", indexData{Domain: domain})
}

// RenderInfo writes the info page for slug: the short link, its target and a QR code
// encoding the target.
func RenderInfo(w io.Writer, domain, slug string, target *url.URL) error {
	svg, err := QRCodeSVG(target.String())
	if err != nil {
		return fmt.Errorf("rendering qr code: %w", err)
	}

	// Buffer so a template error doesn't leave a half-written page
	var buf bytes.Buffer
	err = pages.ExecuteTemplate(&buf, "info.html", infoData{
		Domain: domain,
		Link:   domain + "/" + slug,
		Target: target.String(),
		QR:     template.HTML(svg),
	})
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func mustReadFile(name string) []byte {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic("web: reading embedded " + name + ": " + err.Error())
	}
	return data
}

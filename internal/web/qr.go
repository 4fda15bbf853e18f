// ABOUTME: QR code generation rendered as inline SVG
// ABOUTME: Medium error correction, no quiet zone, rounded modules

package web

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeSVG encodes content as a QR code at medium error correction and returns it as
// an SVG document with one unit per module and no margin.
func QRCodeSVG(content string) (string, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	code.DisableBorder = true

	bitmap := code.Bitmap()
	size := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="geometricPrecision">`, size, size)
	b.WriteString(`<path fill="currentColor" d="`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				// 1x1 square with 0.25 corner radius
				fmt.Fprintf(&b, "M%d.25 %dh.5a.25 .25 0 0 1 .25 .25v.5a.25 .25 0 0 1-.25 .25h-.5a.25 .25 0 0 1-.25-.25v-.5a.25 .25 0 0 1 .25-.25z", x, y)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String(), nil
}

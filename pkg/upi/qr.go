package upi

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// QRSize is the rendered edge length in pixels.
	QRSize = 300
	// QRMargin is the quiet zone in modules.
	QRMargin = 2
)

// RenderQRCode encodes uri as a black-on-white PNG of QRSize pixels with a
// QRMargin-module quiet zone.
func RenderQRCode(uri string) ([]byte, error) {
	code, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true
	modules := code.Bitmap()

	span := len(modules) + 2*QRMargin
	img := image.NewPaletted(image.Rect(0, 0, QRSize, QRSize), color.Palette{color.White, color.Black})
	for y := 0; y < QRSize; y++ {
		my := y*span/QRSize - QRMargin
		for x := 0; x < QRSize; x++ {
			mx := x*span/QRSize - QRMargin
			if my >= 0 && my < len(modules) && mx >= 0 && mx < len(modules) && modules[my][mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes for inline display.
func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

package pix

import qrcode "github.com/skip2/go-qrcode"

// qrSize is the raster width in pixels the frontend renders charges at.
const qrSize = 300

// RenderQR encodes the BR Code payload as a PNG image. Output is a pure
// function of the payload string.
func RenderQR(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrSize)
}

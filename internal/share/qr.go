package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// QRGenerator renders PNG QR codes pointing at the public page of an event.
type QRGenerator struct {
	baseURL string
	size    int
}

func NewQRGenerator(publicBaseURL string, size int) *QRGenerator {
	if size <= 0 {
		size = defaultQRSize
	}
	return &QRGenerator{baseURL: strings.TrimRight(publicBaseURL, "/"), size: size}
}

func (q *QRGenerator) EventURL(eventID string) string {
	return q.baseURL + "/events/" + url.PathEscape(eventID)
}

func (q *QRGenerator) EventQR(eventID string) ([]byte, error) {
	png, err := qrcode.Encode(q.EventURL(eventID), qrcode.Medium, q.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for event %s: %w", eventID, err)
	}
	return png, nil
}

package source

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// WriteQRCode encodes link as a size x size PNG at path.
func WriteQRCode(link string, size int, path string) error {
	if link == "" {
		return fmt.Errorf("qrcode: empty link")
	}
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qrcode: %w", err)
	}
	if err := q.WriteFile(size, path); err != nil {
		return fmt.Errorf("qrcode write %s: %w", path, err)
	}
	return nil
}

package fetch

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

// decodeBody converts a response body to UTF-8 using the Content-Type charset,
// any <meta charset> declaration, or content sniffing, in that order.
// It also reports the sniffed MIME type and whether the body is textual.
func decodeBody(body []byte, contentType string) (text, mime string, isText bool) {
	detected := mimetype.Detect(body)
	mime = detected.String()
	isText = isTextual(detected)

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return lossyUTF8(body), mime, isText
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return lossyUTF8(body), mime, isText
	}
	return string(decoded), mime, isText
}

// isTextual walks the MIME hierarchy looking for text/plain, which is the
// root of HTML, XML, JSON and friends.
func isTextual(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func lossyUTF8(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return string(bytes.ToValidUTF8(body, []byte("\uFFFD")))
}

package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"strings"

	"signal-classifier/export"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	markdown  = goldmark.New()
	ugcPolicy = bluemonday.UGCPolicy()
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// renderMarkdown turns model output into sanitized HTML for the result page.
// Raw model text is never placed in the page unsanitized.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(ugcPolicy.SanitizeBytes(buf.Bytes()))
}

// imageDataURI reads an uploaded PNG or JPEG and returns it as a data URI
// for inline display. The image is never sent to the model.
func imageDataURI(fh *multipart.FileHeader, maxBytes int64) (template.URL, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", fmt.Errorf("image is larger than %d bytes", maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("image is larger than %d bytes", maxBytes)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", fmt.Errorf("unsupported image type %s, expected PNG or JPEG", mt.String())
	}

	return template.URL("data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// downloadURI embeds an exported report in a link the browser can save.
func downloadURI(doc *export.Document) template.URL {
	return template.URL("data:" + strings.ReplaceAll(doc.ContentType, " ", "") + ";base64," + base64.StdEncoding.EncodeToString(doc.Body))
}

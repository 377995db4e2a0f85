package generate

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in generated content is not passed through.
var preview = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML renders generated content as an HTML preview. Line breaks are
// kept, since posts rely on them.
func RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := preview.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Package htmltomarkdown renders HTML as Markdown and exposes the
// conversion as a registrable "markdown" source pipe.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/qretaio/html2json"
)

// Ensure Converter implements html2json.Converter at compile time.
var _ html2json.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", html2json.Errorf(html2json.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return result, nil
}

// MarkdownSource returns a source pipe factory that renders the matched
// node's inner markup as Markdown through conv. Register it on a pipe
// registry under the name "markdown":
//
//	reg := html2json.DefaultRegistry()
//	reg.RegisterSource("markdown", htmltomarkdown.MarkdownSource(htmltomarkdown.NewConverter()))
//
// A conversion failure resolves the affected value to null, like any other
// pipe failure.
func MarkdownSource(conv html2json.Converter) html2json.SourceFactory {
	return func(arg string) (html2json.Source, error) {
		if arg != "" {
			return nil, html2json.Errorf(html2json.EINVALID, "takes no argument")
		}
		return func(n html2json.Node) (any, error) {
			md, err := conv.Convert(n.Content())
			if err != nil {
				return nil, err
			}
			return strings.TrimSpace(md), nil
		}, nil
	}
}

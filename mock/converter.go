package mock

import "github.com/qretaio/html2json"

var _ html2json.Converter = (*Converter)(nil)

// Converter is a mock implementation of html2json.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

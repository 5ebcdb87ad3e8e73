package mock

import "github.com/qretaio/html2json"

var _ html2json.Document = (*Document)(nil)

// Document is a mock implementation of html2json.Document.
type Document struct {
	RootFn func() html2json.Node
}

func (d *Document) Root() html2json.Node {
	return d.RootFn()
}

package mock

import "github.com/qretaio/html2json"

var _ html2json.Parser = (*Parser)(nil)

// Parser is a mock implementation of html2json.Parser.
type Parser struct {
	ParseFn func(src string) (html2json.Document, error)
}

func (p *Parser) Parse(src string) (html2json.Document, error) {
	return p.ParseFn(src)
}

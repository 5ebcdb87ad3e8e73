// Package goquery provides the HTML document backend, built on
// PuerkitoBio/goquery with cascadia CSS selectors.
//
// Selectors compile through cascadia directly rather than goquery's Find,
// which panics on selectors it cannot parse; a bad selector surfaces as an
// EINVALID error instead. Compiled selectors are cached process-wide.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/qretaio/html2json"
	"golang.org/x/net/html"
)

// selectorCacheSize bounds the process-wide cache of compiled selectors.
// Collections re-apply one selector per element and embedders re-run
// identical specs, so sharing compiled matchers across documents pays off.
const selectorCacheSize = 512

var selectorCache, _ = lru.New[string, cascadia.Selector](selectorCacheSize)

func compileSelector(selector string) (cascadia.Selector, error) {
	if m, ok := selectorCache.Get(selector); ok {
		return m, nil
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, html2json.Errorf(html2json.EINVALID, "invalid selector %q: %v", selector, err)
	}
	selectorCache.Add(selector, m)
	return m, nil
}

var _ html2json.Parser = (*Parser)(nil)

// Parser parses HTML source into documents the engine can evaluate.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements html2json.Parser.
func (p *Parser) Parse(src string) (html2json.Document, error) {
	return Parse(src)
}

// Parse parses HTML source text into a document. Parsing follows the HTML5
// algorithm, so fragments without html or body tags work fine.
func Parse(src string) (html2json.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, html2json.Errorf(html2json.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{doc: doc}, nil
}

// Extract parses HTML source and evaluates a spec against it in one call.
func Extract(src string, spec *html2json.Spec) (any, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return html2json.Extract(doc, spec)
}

var _ html2json.Document = (*Document)(nil)

// Document wraps a parsed goquery document.
type Document struct {
	doc *goquery.Document
}

// Root returns the document node.
func (d *Document) Root() html2json.Node {
	return &Node{sel: d.doc.Selection}
}

var _ html2json.Node = (*Node)(nil)

// Node wraps a single-element goquery selection.
type Node struct {
	sel *goquery.Selection
}

// Text returns the node's concatenated text content. A void element whose
// text parsed empty recovers its immediately following text sibling; feeds
// pasted into HTML ("<link>https://…") parse that way because void elements
// cannot hold children.
func (n *Node) Text() string {
	if t := n.sel.Text(); t != "" {
		return t
	}
	return n.voidText()
}

// Content returns the node's raw inner markup, with the same void-element
// recovery as Text.
func (n *Node) Content() string {
	h, err := n.sel.Html()
	if err != nil || h == "" {
		return n.voidText()
	}
	return h
}

// Attr returns the value of the named attribute on the node.
func (n *Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// Find returns the node's descendants matching the CSS selector, in
// document order.
func (n *Node) Find(selector string) ([]html2json.Node, error) {
	m, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(n.sel.FindMatcher(m)), nil
}

// FindSibling searches each following sibling element in turn and returns
// the matches from the first sibling that contains any.
func (n *Node) FindSibling(selector string) ([]html2json.Node, error) {
	m, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	siblings := n.sel.NextAll()
	for i := 0; i < siblings.Length(); i++ {
		if found := siblings.Eq(i).FindMatcher(m); found.Length() > 0 {
			return wrapAll(found), nil
		}
	}
	return nil, nil
}

func wrapAll(sel *goquery.Selection) []html2json.Node {
	if sel.Length() == 0 {
		return nil
	}
	nodes := make([]html2json.Node, sel.Length())
	for i := range nodes {
		nodes[i] = &Node{sel: sel.Eq(i)}
	}
	return nodes
}

// voidElements per the HTML standard; the parser never gives these
// children, so markup like "<link>text</link>" puts the text in a sibling.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// voidText returns the trimmed text of the node's immediately following
// text sibling when the node is a void element, and "" otherwise.
func (n *Node) voidText() string {
	if len(n.sel.Nodes) == 0 {
		return ""
	}
	node := n.sel.Nodes[0]
	if node.Type != html.ElementNode || !voidElements[node.Data] {
		return ""
	}
	sib := node.NextSibling
	if sib == nil || sib.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(sib.Data)
}

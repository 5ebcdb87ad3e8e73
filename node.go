package html2json

import "context"

// Universal is the selector the engine substitutes for a collection whose
// object spec has no scope key. Backends must resolve it to every
// descendant element of the scope node, translating to their own selector
// syntax as needed.
const Universal = "*"

// Node is one element of a parsed document. The engine only ever reads
// nodes; backends may therefore share a single parsed tree across all nodes
// handed out for it.
type Node interface {
	// Text returns the node's concatenated text content.
	Text() string

	// Content returns the node's raw inner markup, preserving child tags.
	Content() string

	// Attr returns the value of the named attribute and whether it exists.
	Attr(name string) (string, bool)

	// Find returns the node's descendants matching the selector, in
	// document order. Selector syntax belongs to the backend (CSS for
	// HTML, etree paths for XML). A selector the backend cannot compile
	// is an error; a selector that matches nothing is an empty slice.
	Find(selector string) ([]Node, error)

	// FindSibling searches each following sibling of the node in turn for
	// descendants matching the selector and returns the matches from the
	// first sibling that has any.
	FindSibling(selector string) ([]Node, error)
}

// Document is a parsed document a spec can be evaluated against.
type Document interface {
	// Root returns the document root, the initial scope for evaluation.
	Root() Node
}

// Parser parses document source text into a Document.
type Parser interface {
	Parse(src string) (Document, error)
}

// Fetcher retrieves document source text from URLs.
type Fetcher interface {
	// Fetch downloads the document at url and returns its body.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Converter renders HTML as Markdown. It backs the markdown pipe; the
// engine itself never converts content.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

package mock

import "github.com/qretaio/html2json"

var _ html2json.Node = (*Node)(nil)

// Node is a mock implementation of html2json.Node.
type Node struct {
	TextFn        func() string
	ContentFn     func() string
	AttrFn        func(name string) (string, bool)
	FindFn        func(selector string) ([]html2json.Node, error)
	FindSiblingFn func(selector string) ([]html2json.Node, error)
}

func (n *Node) Text() string {
	return n.TextFn()
}

func (n *Node) Content() string {
	return n.ContentFn()
}

func (n *Node) Attr(name string) (string, bool) {
	return n.AttrFn(name)
}

func (n *Node) Find(selector string) ([]html2json.Node, error) {
	return n.FindFn(selector)
}

func (n *Node) FindSibling(selector string) ([]html2json.Node, error) {
	return n.FindSiblingFn(selector)
}

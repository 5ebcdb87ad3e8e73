// Package binding exposes extraction as a plain-text API: document text and
// spec text in, JSON text out. It exists for embedders that cannot build Go
// values, keeps a process-wide pipe registry with the markdown pipe wired
// in, and initializes that registry lazily exactly once.
package binding

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/qretaio/html2json"
	"github.com/qretaio/html2json/goquery"
	"github.com/qretaio/html2json/htmltomarkdown"
)

var (
	initOnce sync.Once
	registry *html2json.Registry
)

// Init prepares the shared pipe registry: the built-in pipes plus the
// markdown source pipe. It is safe for concurrent use and idempotent;
// Extract calls it automatically, so calling it up front is only useful to
// pay the setup cost at a predictable time.
func Init() {
	initOnce.Do(func() {
		registry = html2json.DefaultRegistry()
		registry.RegisterSource("markdown",
			htmltomarkdown.MarkdownSource(htmltomarkdown.NewConverter()))
	})
}

// Extract evaluates the JSON spec text against the HTML document and
// returns the result as compact JSON text.
func Extract(document, spec string) (string, error) {
	Init()

	parsed, err := html2json.ParseSpecBytes([]byte(spec), registry)
	if err != nil {
		return "", err
	}

	result, err := goquery.Extract(document, parsed)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Result carries one asynchronous extraction outcome.
type Result struct {
	JSON string
	Err  error
}

// ExtractAsync runs Extract on its own goroutine and delivers the outcome
// on the returned channel. The channel is buffered, so the result never
// blocks on a slow receiver.
func ExtractAsync(document, spec string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		out, err := Extract(document, spec)
		ch <- Result{JSON: out, Err: err}
	}()
	return ch
}

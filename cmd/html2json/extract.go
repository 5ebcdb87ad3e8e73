package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/qretaio/html2json"
	"github.com/qretaio/html2json/fs"
)

const (
	// maxDocumentSize caps local file and stdin documents at the same size
	// the HTTP fetcher enforces for remote ones.
	maxDocumentSize = 100_000_000

	// maxSpecSize caps extractor spec files. Specs are hand-written JSON
	// and anything near this limit is a wrong file, not a big spec.
	maxSpecSize = 1 << 20
)

// ExtractCmd runs the extractor spec against one or more documents.
type ExtractCmd struct {
	Inputs      []string
	Spec        string
	Check       string
	Output      string
	Compact     bool
	Concurrency int
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	spec, err := c.loadSpec(deps.Registry)
	if err != nil {
		return err
	}

	value, err := c.extractAll(deps, spec)
	if err != nil {
		return err
	}

	if c.Check != "" {
		return c.check(deps, value)
	}

	return c.write(deps, value)
}

// loadSpec reads and parses the extractor spec file.
func (c *ExtractCmd) loadSpec(reg *html2json.Registry) (*html2json.Spec, error) {
	f, err := os.Open(c.Spec)
	if err != nil {
		return nil, html2json.Errorf(html2json.ENOTFOUND, "cannot read spec %s: %v", c.Spec, err)
	}
	defer f.Close()

	data, err := readCapped(f, maxSpecSize, c.Spec)
	if err != nil {
		return nil, err
	}

	return html2json.ParseSpecBytes([]byte(data), reg)
}

// extractAll evaluates the spec against every input. A single input yields
// its result directly; multiple inputs yield an array in argument order.
func (c *ExtractCmd) extractAll(deps *Dependencies, spec *html2json.Spec) (any, error) {
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	if len(inputs) == 1 {
		return c.extractOne(deps.Ctx, deps, spec, inputs[0])
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)

	results := make([]any, len(inputs))
	for i, input := range inputs {
		g.Go(func() error {
			v, err := c.extractOne(ctx, deps, spec, input)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// extractOne reads a single input, parses it, and evaluates the spec.
func (c *ExtractCmd) extractOne(ctx context.Context, deps *Dependencies, spec *html2json.Spec, input string) (any, error) {
	begin := time.Now()

	src, err := c.readInput(ctx, deps, input)
	if err != nil {
		return nil, err
	}

	doc, err := deps.Parser.Parse(src)
	if err != nil {
		return nil, err
	}

	v, err := html2json.Extract(doc, spec)
	if err != nil {
		return nil, err
	}

	deps.Logger.Debug("extracted",
		"input", input,
		"bytes", len(src),
		"duration", time.Since(begin),
	)
	return v, nil
}

// readInput resolves an input argument to document source text. A dash reads
// stdin, http(s) URLs go through the rate-limited fetcher, and everything
// else is treated as a file path.
func (c *ExtractCmd) readInput(ctx context.Context, deps *Dependencies, input string) (string, error) {
	switch {
	case input == "-":
		return readCapped(deps.Stdin, maxDocumentSize, "stdin document")

	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		u, err := url.Parse(input)
		if err != nil {
			return "", html2json.Errorf(html2json.EINVALID, "invalid URL %q: %v", input, err)
		}
		if err := deps.Limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
		return deps.Fetcher.Fetch(ctx, input)

	default:
		f, err := os.Open(input)
		if err != nil {
			return "", html2json.Errorf(html2json.ENOTFOUND, "cannot read document %s: %v", input, err)
		}
		defer f.Close()
		return readCapped(f, maxDocumentSize, input)
	}
}

// check compares the extraction result against an expected-output JSON file
// and reports a diff on mismatch.
func (c *ExtractCmd) check(deps *Dependencies, got any) error {
	data, err := os.ReadFile(c.Check)
	if err != nil {
		return html2json.Errorf(html2json.ENOTFOUND, "cannot read expected output %s: %v", c.Check, err)
	}

	var want any
	if err := json.Unmarshal(data, &want); err != nil {
		return html2json.Errorf(html2json.EINVALID, "invalid expected JSON in %s: %v", c.Check, err)
	}

	norm, err := normalize(got)
	if err != nil {
		return err
	}

	if diff := cmp.Diff(want, norm); diff != "" {
		fmt.Fprintf(deps.Stderr, "mismatch (-expected +actual):\n%s", diff)
		return html2json.Errorf(html2json.ECONFLICT, "output does not match %s", c.Check)
	}
	return nil
}

// normalize round-trips a value through JSON so numeric types compare the
// way JSON represents them. Extraction produces int64 for parseAs:int, but
// the expectation file can only ever hold float64.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// write marshals the result and sends it to the output file or stdout.
func (c *ExtractCmd) write(deps *Dependencies, v any) error {
	data, err := c.marshal(v)
	if err != nil {
		return err
	}

	if c.Output != "" {
		return fs.WriteFile(c.Output, data)
	}

	_, err = deps.Stdout.Write(data)
	return err
}

// marshal encodes the result as JSON without escaping HTML characters, since
// extracted values routinely contain markup fragments.
func (c *ExtractCmd) marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !c.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readCapped reads at most limit bytes from r and fails if the content is
// larger than that.
func readCapped(r io.Reader, limit int64, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return "", html2json.Errorf(html2json.EINVALID, "%s exceeds %d bytes", name, limit)
	}
	return string(data), nil
}

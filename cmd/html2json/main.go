package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/qretaio/html2json"
	"github.com/qretaio/html2json/etree"
	"github.com/qretaio/html2json/goquery"
	"github.com/qretaio/html2json/htmltomarkdown"
	h2jhttp "github.com/qretaio/html2json/http"
	h2jslog "github.com/qretaio/html2json/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", formatError(err))
		os.Exit(1)
	}
}

// formatError keeps application errors readable and falls back to the full
// error text for everything else, where the chain is the useful part.
func formatError(err error) string {
	if code := html2json.ErrorCode(err); code != "" && code != html2json.EINTERNAL {
		return html2json.ErrorMessage(err)
	}
	return err.Error()
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("html2json"),
		kong.Description("Extract structured JSON from HTML and XML documents using a JSON extractor spec"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	_, err = parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []h2jhttp.Option{h2jhttp.WithTimeout(cli.Timeout)}
	if cli.UserAgent != "" {
		opts = append(opts, h2jhttp.WithUserAgent(cli.UserAgent))
	}
	httpFetcher := h2jhttp.NewFetcher(opts...)
	defer httpFetcher.Close()

	var docParser html2json.Parser = goquery.NewParser()
	if cli.XML {
		docParser = etree.NewParser()
	}

	registry := html2json.DefaultRegistry()
	registry.RegisterSource("markdown",
		htmltomarkdown.MarkdownSource(htmltomarkdown.NewConverter()))

	deps := &Dependencies{
		Ctx:      ctx,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   logger,
		Parser:   docParser,
		Fetcher:  h2jslog.NewLoggingFetcher(httpFetcher, logger),
		Limiter:  h2jhttp.NewHostLimiter(cli.RPS),
		Registry: registry,
	}

	cmd := &ExtractCmd{
		Inputs:      cli.Inputs,
		Spec:        cli.Spec,
		Check:       cli.Check,
		Output:      cli.Output,
		Compact:     cli.Compact,
		Concurrency: cli.Concurrency,
	}

	return cmd.Run(deps)
}

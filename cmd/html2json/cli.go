package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/qretaio/html2json"
)

// CLI represents the command-line interface structure.
type CLI struct {
	Inputs      []string      `arg:"" optional:"" help:"Documents to extract from: file paths or http(s) URLs. A single dash, or no inputs at all, reads stdin."`
	Spec        string        `short:"s" required:"" help:"Path to the JSON extractor spec file."`
	Check       string        `short:"c" help:"Expected-output JSON file to compare the result against. A mismatch prints a diff and exits non-zero."`
	Output      string        `short:"o" help:"Write the result to a file instead of stdout."`
	XML         bool          `help:"Parse documents as XML and interpret selectors as element paths."`
	Compact     bool          `help:"Emit compact single-line JSON."`
	Concurrency int           `default:"4" help:"Concurrent extraction limit when multiple inputs are given."`
	Timeout     time.Duration `default:"30s" help:"Timeout per URL fetch."`
	RPS         float64       `name:"rps" default:"2" help:"Per-host request rate for URL inputs."`
	UserAgent   string        `env:"HTML2JSON_UA" help:"User-Agent header for URL fetches."`
	Verbose     bool          `short:"v" help:"Enable debug logging."`
}

// Dependencies holds the services commands need to run. Tests inject fakes
// here instead of going through Main.Run.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Parser   html2json.Parser
	Fetcher  html2json.Fetcher
	Limiter  html2json.HostLimiter
	Registry *html2json.Registry
}

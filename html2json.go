// Package html2json extracts structured JSON from HTML and XML documents.
// The shape of the output is declared, not programmed: a JSON "extractor
// spec" maps output field names to selector expressions, and the engine
// walks the spec against a parsed document, resolving selectors and piping
// matched content through named transformations.
//
// This package contains the domain types, the spec parser, the pipe
// registry, and the evaluator, following Ben Johnson's Standard Package
// Layout. Document backends and other adapters live in subdirectories named
// after their primary dependency (e.g., goquery/, etree/, http/).
package html2json

package html2json

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Source reads the initial value of a pipe chain off the matched node.
// Returned errors are resolution failures and surface as null, never as an
// extraction error.
type Source func(n Node) (any, error)

// Transform maps the current pipe-chain value to the next one. Returned
// errors are resolution failures and surface as null.
type Transform func(v any) (any, error)

// SourceFactory builds a Source from the pipe's argument text. Factories
// run once per spec parse; an argument error makes the whole spec invalid.
type SourceFactory func(arg string) (Source, error)

// TransformFactory builds a Transform from the pipe's argument text.
type TransformFactory func(arg string) (Transform, error)

// Registry maps pipe names to their factories. A source pipe may only
// appear as the first segment of a chain; every later segment must be a
// transform. Registries are not safe for concurrent mutation; register all
// custom pipes before parsing specs.
type Registry struct {
	sources    map[string]SourceFactory
	transforms map[string]TransformFactory
}

// NewRegistry creates an empty registry with no pipes registered.
func NewRegistry() *Registry {
	return &Registry{
		sources:    make(map[string]SourceFactory),
		transforms: make(map[string]TransformFactory),
	}
}

// DefaultRegistry creates a registry populated with the built-in pipes:
// the attr and void sources and the trim, text, lower, upper, title,
// substr, regex, parseAs and hash transforms. Each call returns a fresh
// registry so registering custom pipes never leaks between callers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterSource("attr", attrSource)
	r.RegisterSource("void", voidSource)
	r.RegisterTransform("trim", stringTransform(strings.TrimSpace))
	r.RegisterTransform("text", stringTransform(strings.TrimSpace))
	r.RegisterTransform("lower", stringTransform(strings.ToLower))
	r.RegisterTransform("upper", stringTransform(strings.ToUpper))
	r.RegisterTransform("title", stringTransform(titleCase))
	r.RegisterTransform("substr", substrTransform)
	r.RegisterTransform("regex", regexTransform)
	r.RegisterTransform("parseAs", parseAsTransform)
	r.RegisterTransform("hash", stringTransform(hashValue))
	return r
}

// RegisterSource registers a source pipe under name, replacing any
// existing registration.
func (r *Registry) RegisterSource(name string, f SourceFactory) {
	r.sources[name] = f
}

// RegisterTransform registers a transform pipe under name, replacing any
// existing registration.
func (r *Registry) RegisterTransform(name string, f TransformFactory) {
	r.transforms[name] = f
}

// compile resolves one pipe segment. Only the first segment of a chain may
// resolve to a source; exactly one of the returned source and transform is
// non-nil on success.
func (r *Registry) compile(name, arg string, first bool) (Source, Transform, error) {
	if first {
		if f, ok := r.sources[name]; ok {
			src, err := f(arg)
			if err != nil {
				return nil, nil, Errorf(EINVALID, "pipe %q: %s", name, ErrorMessage(err))
			}
			return src, nil, nil
		}
	}
	if f, ok := r.transforms[name]; ok {
		t, err := f(arg)
		if err != nil {
			return nil, nil, Errorf(EINVALID, "pipe %q: %s", name, ErrorMessage(err))
		}
		return nil, t, nil
	}
	if _, ok := r.sources[name]; ok {
		return nil, nil, Errorf(EINVALID, "pipe %q must be the first segment of the chain", name)
	}
	return nil, nil, Errorf(EINVALID, "unknown pipe %q", name)
}

func attrSource(arg string) (Source, error) {
	if arg == "" {
		return nil, Errorf(EINVALID, "requires an attribute name")
	}
	return func(n Node) (any, error) {
		v, ok := n.Attr(arg)
		if !ok {
			return nil, fmt.Errorf("attribute %q not present", arg)
		}
		return v, nil
	}, nil
}

func voidSource(arg string) (Source, error) {
	if arg != "" {
		return nil, Errorf(EINVALID, "takes no argument")
	}
	return func(n Node) (any, error) {
		return n.Content(), nil
	}, nil
}

// stringTransform adapts a pure string function into a no-argument
// transform factory.
func stringTransform(f func(string) string) TransformFactory {
	return func(arg string) (Transform, error) {
		if arg != "" {
			return nil, Errorf(EINVALID, "takes no argument")
		}
		return func(v any) (any, error) {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			return f(s), nil
		}, nil
	}
}

// titleCase creates its caser per call; cases.Caser carries state and is
// not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// hashValue fingerprints a string as lowercase hex of its xxhash-64.
func hashValue(s string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(s))
}

func substrTransform(arg string) (Transform, error) {
	if arg == "" {
		return nil, Errorf(EINVALID, "requires a start[:end] argument")
	}
	parts := strings.SplitN(arg, ":", 2)
	start, err := strconv.Atoi(parts[0])
	if err != nil || start < 0 {
		return nil, Errorf(EINVALID, "invalid start offset %q", parts[0])
	}
	end := -1
	if len(parts) == 2 {
		end, err = strconv.Atoi(parts[1])
		if err != nil || end < 0 {
			return nil, Errorf(EINVALID, "invalid end offset %q", parts[1])
		}
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		// Offsets count characters, not bytes, and clamp to the value's
		// length. A start past the end yields the empty string.
		r := []rune(s)
		lo := min(start, len(r))
		hi := len(r)
		if end >= 0 {
			hi = min(end, len(r))
		}
		if lo > hi {
			return "", nil
		}
		return string(r[lo:hi]), nil
	}, nil
}

// regexCacheSize bounds the process-wide cache of compiled patterns.
// Collections compile nothing per element, but embedders re-parse identical
// specs; the cache keeps that cheap. Go's regexp engine is linear-time, so
// no pattern complexity limits are needed beyond the size bound.
const regexCacheSize = 256

var regexCache, _ = lru.New[string, *regexp.Regexp](regexCacheSize)

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

func regexTransform(arg string) (Transform, error) {
	if arg == "" {
		return nil, Errorf(EINVALID, "requires a pattern argument")
	}
	re, err := compileRegex(arg)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid pattern %q: %v", arg, err)
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		m := re.FindStringSubmatchIndex(s)
		if m == nil {
			return nil, fmt.Errorf("pattern %q matched nothing", arg)
		}
		// The first capture group wins when it participated in the match;
		// otherwise the whole match is kept.
		if len(m) >= 4 && m[2] >= 0 {
			return s[m[2]:m[3]], nil
		}
		return s[m[0]:m[1]], nil
	}, nil
}

func parseAsTransform(arg string) (Transform, error) {
	switch arg {
	case "int":
		return func(v any) (any, error) {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q as int: %w", s, err)
			}
			return n, nil
		}, nil
	case "float", "number":
		return func(v any) (any, error) {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q as float: %w", s, err)
			}
			return f, nil
		}, nil
	default:
		return nil, Errorf(EINVALID, `argument must be "int", "float" or "number"`)
	}
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string value, got %T", v)
	}
	return s, nil
}

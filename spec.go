package html2json

import (
	"encoding/json"
	"sort"
	"strings"
)

// SpecNode is one node of a parsed extractor spec: a selector expression, a
// literal value, a sub-object, or a collection. The concrete types are
// *Expr, *Literal, *ObjectSpec and *CollectionSpec.
type SpecNode interface {
	specNode()
}

func (*Expr) specNode()           {}
func (*Literal) specNode()        {}
func (*ObjectSpec) specNode()     {}
func (*CollectionSpec) specNode() {}

// Spec is a parsed extractor spec, ready for evaluation against any number
// of documents.
type Spec struct {
	Root SpecNode
}

// Literal is a spec value emitted verbatim into the result without touching
// the document: quoted strings, numbers, booleans and null.
type Literal struct {
	Value any
}

// ObjectSpec assembles a JSON object. An optional scope expression narrows
// the node the field specs are evaluated against.
type ObjectSpec struct {
	Scope  *Expr
	Fields []Field
}

// Field is a single key of an ObjectSpec. Optional fields are omitted from
// the assembled object when their value resolves to null.
type Field struct {
	Key      string
	Optional bool
	Spec     SpecNode
}

// CollectionSpec assembles a JSON array, either by evaluating an object spec
// once per scope match or by running a selector expression over every match.
// Exactly one of Object and Expr is set.
type CollectionSpec struct {
	Object *ObjectSpec
	Expr   *Expr
}

// AltKind distinguishes how a fallback alternative locates nodes.
type AltKind int

const (
	// AltDescendant matches descendants of the scope node. A leading ">"
	// in the source text is stripped and treated the same way.
	AltDescendant AltKind = iota
	// AltSelf matches the scope node itself, written "$".
	AltSelf
	// AltSibling matches within each following sibling of the scope in
	// turn, written "+ sel". The first sibling that yields any match wins.
	AltSibling
)

// Alt is one fallback alternative of a selector expression.
type Alt struct {
	Kind     AltKind
	Selector string
}

// Expr is a parsed selector expression: one or more fallback alternatives
// followed by an optional pipe chain. The chain is resolved against the
// registry at parse time, so evaluation never sees pipe names.
type Expr struct {
	Alts []Alt

	source Source
	chain  []Transform
}

// ParseSpec parses a decoded JSON value into a Spec. The value uses the
// types encoding/json produces: string, float64, bool, nil, map[string]any
// and []any. Pipe names are resolved against reg; a nil reg means
// DefaultRegistry. All parse failures carry code EINVALID.
func ParseSpec(v any, reg *Registry) (*Spec, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	root, err := parseNode(v, reg)
	if err != nil {
		return nil, err
	}
	return &Spec{Root: root}, nil
}

// ParseSpecBytes decodes JSON spec text and parses it.
func ParseSpecBytes(data []byte, reg *Registry) (*Spec, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, Errorf(EINVALID, "invalid spec JSON: %v", err)
	}
	return ParseSpec(v, reg)
}

func parseNode(v any, reg *Registry) (SpecNode, error) {
	switch v := v.(type) {
	case string:
		if lit, ok := parseLiteralString(v); ok {
			return &Literal{Value: lit}, nil
		}
		return parseExpr(v, reg)
	case float64:
		return &Literal{Value: v}, nil
	case bool:
		return &Literal{Value: v}, nil
	case nil:
		return &Literal{Value: nil}, nil
	case map[string]any:
		return parseObject(v, reg)
	case []any:
		return parseCollection(v, reg)
	default:
		return nil, Errorf(EINVALID, "unsupported spec value of type %T", v)
	}
}

// parseLiteralString reports whether s is a quoted string literal and
// returns its unquoted content. Only surrounding whitespace is removed; the
// content between the quotes is kept verbatim.
func parseLiteralString(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if len(t) < 2 {
		return "", false
	}
	if (t[0] == '\'' && t[len(t)-1] == '\'') || (t[0] == '"' && t[len(t)-1] == '"') {
		return t[1 : len(t)-1], true
	}
	return "", false
}

func parseObject(m map[string]any, reg *Registry) (*ObjectSpec, error) {
	obj := &ObjectSpec{}
	if raw, ok := m["$"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, Errorf(EINVALID, "scope selector must be a string, got %T", raw)
		}
		scope, err := parseScopeExpr(s, reg)
		if err != nil {
			return nil, err
		}
		obj.Scope = scope
	}
	for key, val := range m {
		if key == "$" {
			continue
		}
		name := strings.TrimSuffix(key, "?")
		if name == "" {
			return nil, Errorf(EINVALID, "empty field name")
		}
		if name == "$" {
			return nil, Errorf(EINVALID, `field name "$" is reserved for the scope selector`)
		}
		node, err := parseNode(val, reg)
		if err != nil {
			return nil, Errorf(EINVALID, "field %q: %s", key, ErrorMessage(err))
		}
		obj.Fields = append(obj.Fields, Field{
			Key:      name,
			Optional: name != key,
			Spec:     node,
		})
	}
	sort.Slice(obj.Fields, func(i, j int) bool { return obj.Fields[i].Key < obj.Fields[j].Key })
	for i := 1; i < len(obj.Fields); i++ {
		if obj.Fields[i].Key == obj.Fields[i-1].Key {
			return nil, Errorf(EINVALID, "duplicate field %q", obj.Fields[i].Key)
		}
	}
	return obj, nil
}

func parseCollection(arr []any, reg *Registry) (*CollectionSpec, error) {
	if len(arr) != 1 {
		return nil, Errorf(EINVALID, "collection spec must contain exactly one element, got %d", len(arr))
	}
	switch el := arr[0].(type) {
	case map[string]any:
		obj, err := parseObject(el, reg)
		if err != nil {
			return nil, err
		}
		return &CollectionSpec{Object: obj}, nil
	case string:
		if _, ok := parseLiteralString(el); ok {
			return nil, Errorf(EINVALID, "collection element must be a selector expression or object, got a literal")
		}
		expr, err := parseExpr(el, reg)
		if err != nil {
			return nil, err
		}
		return &CollectionSpec{Expr: expr}, nil
	default:
		return nil, Errorf(EINVALID, "collection element must be a selector expression or object, got %T", el)
	}
}

// parseScopeExpr parses a "$" scope value, which may use fallback
// alternation but never pipes.
func parseScopeExpr(s string, reg *Registry) (*Expr, error) {
	expr, err := parseExpr(s, reg)
	if err != nil {
		return nil, err
	}
	if expr.source != nil || len(expr.chain) > 0 {
		return nil, Errorf(EINVALID, "scope selector %q cannot have pipes", s)
	}
	return expr, nil
}

func parseExpr(s string, reg *Registry) (*Expr, error) {
	if strings.TrimSpace(s) == "" {
		return nil, Errorf(EINVALID, "empty selector expression")
	}
	rawAlts, rawPipes, err := splitExpr(s)
	if err != nil {
		return nil, err
	}

	// A bare attribute source stands in for "$ | attr:name".
	if len(rawAlts) == 1 && strings.HasPrefix(strings.TrimSpace(rawAlts[0]), "attr:") {
		rawPipes = append([]string{strings.TrimSpace(rawAlts[0])}, rawPipes...)
		rawAlts[0] = "$"
	}

	expr := &Expr{Alts: make([]Alt, 0, len(rawAlts))}
	for _, raw := range rawAlts {
		alt, err := parseAlt(raw)
		if err != nil {
			return nil, err
		}
		expr.Alts = append(expr.Alts, alt)
	}

	segs := make([]string, 0, len(rawPipes))
	for _, seg := range rawPipes {
		if seg = strings.TrimSpace(seg); seg != "" {
			segs = append(segs, seg)
		}
	}
	for i, seg := range segs {
		name, arg := splitPipe(seg)
		src, t, err := reg.compile(name, arg, i == 0)
		if err != nil {
			return nil, err
		}
		if src != nil {
			expr.source = src
			continue
		}
		expr.chain = append(expr.chain, t)
	}
	return expr, nil
}

func parseAlt(raw string) (Alt, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Alt{}, Errorf(EINVALID, "empty selector alternative")
	case s == "$":
		return Alt{Kind: AltSelf}, nil
	case strings.HasPrefix(s, "+ "):
		return Alt{Kind: AltSibling, Selector: strings.TrimSpace(s[2:])}, nil
	case strings.HasPrefix(s, ">"):
		sel := strings.TrimSpace(s[1:])
		if sel == "" {
			return Alt{}, Errorf(EINVALID, "empty selector alternative")
		}
		return Alt{Kind: AltDescendant, Selector: sel}, nil
	default:
		return Alt{Kind: AltDescendant, Selector: s}, nil
	}
}

// splitExpr splits a selector expression into its fallback alternatives and
// pipe segments. An unescaped "||" separates alternatives, the first
// unescaped single "|" starts the pipe chain, and the two-byte sequence
// `\|` produces a literal pipe character. Every other backslash is kept
// verbatim so regex pipe arguments pass through untouched.
func splitExpr(s string) (alts, pipes []string, err error) {
	var cur strings.Builder
	var segs []string
	var double []bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if c != '|' {
			cur.WriteByte(c)
			continue
		}
		segs = append(segs, cur.String())
		cur.Reset()
		if i+1 < len(s) && s[i+1] == '|' {
			double = append(double, true)
			i++
		} else {
			double = append(double, false)
		}
	}
	segs = append(segs, cur.String())

	pipeStart := -1
	for i, d := range double {
		if !d {
			pipeStart = i
			break
		}
	}
	if pipeStart == -1 {
		return segs, nil, nil
	}
	for _, d := range double[pipeStart+1:] {
		if d {
			return nil, nil, Errorf(EINVALID, "fallback alternatives must precede the pipe chain in %q", s)
		}
	}
	return segs[:pipeStart+1], segs[pipeStart+1:], nil
}

// splitPipe separates a pipe segment into its name and argument text at the
// first colon, so "substr:0:4" yields ("substr", "0:4").
func splitPipe(seg string) (name, arg string) {
	if i := strings.IndexByte(seg, ':'); i >= 0 {
		return seg[:i], seg[i+1:]
	}
	return seg, ""
}

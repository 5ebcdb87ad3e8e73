package html2json

// Extract evaluates a parsed spec against a document, with the document
// root as the initial scope. The result is built from the types
// encoding/json marshals naturally: map[string]any, []any, string, float64,
// int64, bool and nil.
//
// Only structural failures return an error: selectors the backend rejects
// and other document-access faults. A selector that matches nothing, a
// missing attribute or a failing transform resolves the affected value to
// null instead, so one bad corner of a page never discards the rest of the
// extraction.
func Extract(doc Document, spec *Spec) (any, error) {
	return evalNode(doc.Root(), spec.Root)
}

func evalNode(scope Node, n SpecNode) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Expr:
		return evalExpr(scope, n)
	case *ObjectSpec:
		return evalObject(scope, n)
	case *CollectionSpec:
		return evalCollection(scope, n)
	default:
		return nil, Errorf(EINTERNAL, "unknown spec node type %T", n)
	}
}

// evalExpr runs a selector expression against the scope: the first
// alternative with at least one match wins, and the pipe chain runs on that
// first matched node.
func evalExpr(scope Node, e *Expr) (any, error) {
	nodes, err := matchFirst(scope, e.Alts)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	v, err := e.run(nodes[0])
	if err != nil {
		return nil, nil
	}
	return v, nil
}

func evalObject(scope Node, o *ObjectSpec) (any, error) {
	target, err := resolveScope(scope, o.Scope)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	return evalFields(target, o.Fields)
}

func evalFields(scope Node, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := evalNode(scope, f.Spec)
		if err != nil {
			return nil, err
		}
		if f.Optional && v == nil {
			continue
		}
		out[f.Key] = v
	}
	return out, nil
}

func evalCollection(scope Node, c *CollectionSpec) (any, error) {
	if c.Expr != nil {
		nodes, err := matchFirst(scope, c.Expr.Alts)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(nodes))
		for _, n := range nodes {
			v, err := c.Expr.run(n)
			if err != nil {
				// The element keeps its slot so positions in parallel
				// collections still line up.
				out = append(out, nil)
				continue
			}
			out = append(out, v)
		}
		return out, nil
	}

	targets, err := collectionScopes(scope, c.Object.Scope)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(targets))
	for _, t := range targets {
		v, err := evalFields(t, c.Object.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// collectionScopes resolves the node set a collection's object spec is
// evaluated over: every match of the scope expression, the scope node
// itself for "$", or every element under the scope when no scope is given.
func collectionScopes(scope Node, e *Expr) ([]Node, error) {
	if e == nil {
		return scope.Find(Universal)
	}
	return matchFirst(scope, e.Alts)
}

// resolveScope narrows the evaluation scope for an object spec. A nil
// expression inherits the current scope; a scope that matches nothing
// resolves to nil and the object becomes null without evaluating its body.
func resolveScope(scope Node, e *Expr) (Node, error) {
	if e == nil {
		return scope, nil
	}
	nodes, err := matchFirst(scope, e.Alts)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// matchFirst returns the matches of the first alternative that yields any,
// in document order.
func matchFirst(scope Node, alts []Alt) ([]Node, error) {
	for _, a := range alts {
		nodes, err := a.match(scope)
		if err != nil {
			return nil, err
		}
		if len(nodes) > 0 {
			return nodes, nil
		}
	}
	return nil, nil
}

func (a Alt) match(scope Node) ([]Node, error) {
	switch a.Kind {
	case AltSelf:
		return []Node{scope}, nil
	case AltSibling:
		return scope.FindSibling(a.Selector)
	default:
		return scope.Find(a.Selector)
	}
}

// run reads the chain's initial value off the node and applies each
// transform in order. Without a source pipe the chain starts from the
// node's text content.
func (e *Expr) run(n Node) (any, error) {
	var v any
	if e.source != nil {
		var err error
		v, err = e.source(n)
		if err != nil {
			return nil, err
		}
	} else {
		v = n.Text()
	}
	for _, t := range e.chain {
		var err error
		v, err = t(v)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Package render turns card templates and note fields into displayable
// markup. Rendering is pure: the same (template, fields, options) triple
// always produces the same string.
//
// Templates use mustache-like syntax as found in legacy packages:
//
//	{{Field}}            variable substitution
//	{{filter:Field}}     substitution through a named filter
//	{{#Field}}…{{/Field}} kept when Field is non-empty
//	{{^Field}}…{{/Field}} kept when Field is empty or absent
//	{{FrontSide}}        the rendered front template (back side only)
//
// Blocks are parsed into a tree and evaluated in a single pass, so
// arbitrarily deep nesting works without re-scanning.
package render

import (
	"strings"
)

// Options controls a single render call.
type Options struct {
	// RevealAnswer renders the answer side: the type filter shows the
	// expected value instead of an input box.
	RevealAnswer bool
	// FrontTemplate is substituted for {{FrontSide}}. Leave empty when
	// rendering a front template.
	FrontTemplate string
}

// Render evaluates tpl against fields. Unresolved keys become empty
// strings; malformed block tags are kept as literal text.
func Render(tpl string, fields map[string]string, opts Options) string {
	tpl = normalizeNewlines(tpl)

	nodes := parse(tpl)

	var b strings.Builder
	ev := &evaluator{fields: fields, opts: opts}
	ev.renderNodes(nodes, &b)
	return b.String()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	filter string
	key    string
}

type sectionNode struct {
	key      string
	inverted bool
	children []node
}

type parser struct {
	src string
	pos int
}

func parse(src string) []node {
	p := &parser{src: src}
	nodes, _ := p.parseUntil("")
	return nodes
}

// parseUntil consumes nodes until the closing tag for stopKey is found
// (stopKey "" means parse to the end). The second result reports whether
// the closing tag was actually seen.
func (p *parser) parseUntil(stopKey string) ([]node, bool) {
	var nodes []node

	for p.pos < len(p.src) {
		open := strings.Index(p.src[p.pos:], "{{")
		if open < 0 {
			nodes = append(nodes, textNode{text: p.src[p.pos:]})
			p.pos = len(p.src)
			return nodes, false
		}
		open += p.pos

		if open > p.pos {
			nodes = append(nodes, textNode{text: p.src[p.pos:open]})
		}

		close := strings.Index(p.src[open+2:], "}}")
		if close < 0 {
			// Dangling braces: keep the rest as literal text.
			nodes = append(nodes, textNode{text: p.src[open:]})
			p.pos = len(p.src)
			return nodes, false
		}
		close += open + 2

		raw := p.src[open : close+2]
		tag := strings.TrimSpace(p.src[open+2 : close])
		p.pos = close + 2

		switch {
		case strings.HasPrefix(tag, "/"):
			key := strings.TrimSpace(tag[1:])
			if stopKey != "" && key == stopKey {
				return nodes, true
			}
			// Close tag with no matching open: literal.
			nodes = append(nodes, textNode{text: raw})

		case strings.HasPrefix(tag, "#"), strings.HasPrefix(tag, "^"):
			key := strings.TrimSpace(tag[1:])
			children, closed := p.parseUntil(key)
			if !closed {
				// Unterminated block: keep the open tag literal and
				// splice whatever was parsed after it.
				nodes = append(nodes, textNode{text: raw})
				nodes = append(nodes, children...)
				return nodes, false
			}
			nodes = append(nodes, sectionNode{
				key:      key,
				inverted: strings.HasPrefix(tag, "^"),
				children: children,
			})

		default:
			filter, key := splitFilter(tag)
			nodes = append(nodes, varNode{filter: filter, key: key})
		}
	}

	return nodes, false
}

// splitFilter splits "filter:Key" into its parts. Tags without a colon
// have an empty filter. Chained prefixes keep only the first filter and
// the final key, matching the legacy behavior.
func splitFilter(tag string) (filter, key string) {
	parts := strings.Split(tag, ":")
	if len(parts) == 1 {
		return "", strings.TrimSpace(tag)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[len(parts)-1])
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

type evaluator struct {
	fields map[string]string
	opts   Options
}

func (ev *evaluator) renderNodes(nodes []node, b *strings.Builder) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)
		case sectionNode:
			value, _ := ev.fieldValue(n.key)
			keep := value != ""
			if n.inverted {
				keep = !keep
			}
			if keep {
				ev.renderNodes(n.children, b)
			}
		case varNode:
			b.WriteString(ev.renderVar(n))
		}
	}
}

func (ev *evaluator) renderVar(n varNode) string {
	if n.key == "FrontSide" && n.filter == "" {
		if ev.opts.FrontTemplate == "" {
			return ""
		}
		// Clearing FrontTemplate stops a front template that references
		// FrontSide from recursing into itself.
		return Render(ev.opts.FrontTemplate, ev.fields, Options{
			RevealAnswer: ev.opts.RevealAnswer,
		})
	}

	value, ok := ev.fieldValue(n.key)
	if !ok {
		return ""
	}

	return applyFilter(n.filter, value, ev.opts.RevealAnswer)
}

// fieldValue resolves a key against the field map: exact match first,
// then case-insensitive.
func (ev *evaluator) fieldValue(key string) (string, bool) {
	if v, ok := ev.fields[key]; ok {
		return v, true
	}
	for k, v := range ev.fields {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

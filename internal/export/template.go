package export

import (
	"fmt"
	"strings"
)

// Engine is a minimal template-substitution engine covering exactly
// what the steering templates need: {{var}} substitution,
// {{#if cond}}...{{/if}} blocks rendered when the value is truthy,
// and {{#each arr}}...{{/each}} blocks rendered once per item with
// index, isFirst and isLast bound alongside the item's own fields.
// Blocks of the same kind nest.
type Engine struct{}

// Render substitutes data into tmpl. Unknown variables render as
// empty strings; malformed tags are emitted literally.
func (e Engine) Render(tmpl string, data map[string]any) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		idx := strings.Index(tmpl[i:], "{{")
		if idx < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		b.WriteString(tmpl[i : i+idx])
		i += idx
		rest := tmpl[i:]

		switch {
		case strings.HasPrefix(rest, "{{#if "):
			name, inner, next, ok := block(tmpl, i, "if")
			if !ok {
				b.WriteString("{{")
				i += 2
				continue
			}
			if truthy(data[name]) {
				b.WriteString(e.Render(inner, data))
			}
			i = next

		case strings.HasPrefix(rest, "{{#each "):
			name, inner, next, ok := block(tmpl, i, "each")
			if !ok {
				b.WriteString("{{")
				i += 2
				continue
			}
			for _, scope := range iterScopes(data, data[name]) {
				b.WriteString(e.Render(inner, scope))
			}
			i = next

		default:
			end := strings.Index(rest, "}}")
			if end < 0 {
				b.WriteString(rest)
				i = len(tmpl)
				continue
			}
			key := strings.TrimSpace(rest[2:end])
			b.WriteString(valueString(data[key]))
			i += end + 2
		}
	}
	return b.String()
}

// block locates the {{#kind name}}...{{/kind}} block starting at
// start, honoring nested blocks of the same kind. next is the offset
// just past the closing tag.
func block(tmpl string, start int, kind string) (name, inner string, next int, ok bool) {
	open := "{{#" + kind + " "
	closeTag := "{{/" + kind + "}}"

	headEnd := strings.Index(tmpl[start:], "}}")
	if headEnd < 0 {
		return "", "", 0, false
	}
	name = strings.TrimSpace(tmpl[start+len(open) : start+headEnd])
	bodyStart := start + headEnd + 2

	depth := 1
	pos := bodyStart
	for depth > 0 {
		nextOpen := strings.Index(tmpl[pos:], open)
		nextClose := strings.Index(tmpl[pos:], closeTag)
		if nextClose < 0 {
			return "", "", 0, false
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			pos += nextOpen + len(open)
			continue
		}
		depth--
		if depth == 0 {
			inner = tmpl[bodyStart : pos+nextClose]
			next = pos + nextClose + len(closeTag)
			return name, inner, next, true
		}
		pos += nextClose + len(closeTag)
	}
	return "", "", 0, false
}

// iterScopes expands an each-value into per-item scopes layered over
// the outer data. Items that are maps contribute their fields; plain
// values are bound as "this".
func iterScopes(outer map[string]any, value any) []map[string]any {
	var items []any
	switch v := value.(type) {
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		return nil
	}

	scopes := make([]map[string]any, 0, len(items))
	for i, item := range items {
		scope := make(map[string]any, len(outer)+4)
		for k, v := range outer {
			scope[k] = v
		}
		if m, ok := item.(map[string]any); ok {
			for k, v := range m {
				scope[k] = v
			}
		} else {
			scope["this"] = item
		}
		scope["index"] = i
		scope["isFirst"] = i == 0
		scope["isLast"] = i == len(items)-1
		scopes = append(scopes, scope)
	}
	return scopes
}

// truthy implements the block-rendering rule: non-empty string,
// true, non-zero number or non-empty slice.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case int:
		return t != 0
	case []string:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

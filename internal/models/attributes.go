package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attributes is an open property bag on a resource or relationship.
//
// Decoded from YAML it holds the same values JSON decoding with UseNumber
// would produce: string keys at every depth, numbers as json.Number keeping
// their literal text, so a plan hashes alike in either format.
type Attributes map[string]any

func (a *Attributes) UnmarshalYAML(n *yaml.Node) error {
	n = resolveAlias(n)
	if n.ShortTag() == "!!null" {
		*a = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	m, err := yamlMapping(n)
	if err != nil {
		return err
	}
	*a = m
	return nil
}

func yamlValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

// yamlMapping builds a string-keyed map. Explicit keys win over merged ones.
func yamlMapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := resolveAlias(n.Content[i]), n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
		}
		if key.ShortTag() == "!!merge" {
			merges = append(merges, resolveAlias(val))
			continue
		}
		name := key.Value
		if key.ShortTag() == "!!null" {
			name = "null"
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("line %d: mapping key %q already defined", key.Line, name)
		}
		v, err := yamlValue(val)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}

	for _, m := range merges {
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = make([]*yaml.Node, len(m.Content))
			for i, c := range m.Content {
				sources[i] = resolveAlias(c)
			}
		}
		for _, src := range sources {
			if src.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: merge value must be a mapping", src.Line)
			}
			merged, err := yamlMapping(src)
			if err != nil {
				return nil, err
			}
			for k, v := range merged {
				if _, set := out[k]; !set {
					out[k] = v
				}
			}
		}
	}
	return out, nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if isJSONNumber(n.Value) {
			return json.Number(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		switch i := v.(type) {
		case int:
			return json.Number(strconv.Itoa(i)), nil
		case int64:
			return json.Number(strconv.FormatInt(i, 10)), nil
		case uint64:
			return json.Number(strconv.FormatUint(i, 10)), nil
		case float64:
			return floatNumber(n, i)
		default:
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
	case "!!float":
		if isJSONNumber(n.Value) {
			return json.Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return floatNumber(n, f)
	default:
		return n.Value, nil
	}
}

// floatNumber keeps a fractional part on integral values so 1.0 stays a float.
func floatNumber(n *yaml.Node, f float64) (json.Number, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("line %d: %q has no JSON representation", n.Line, n.Value)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s), nil
}

func isJSONNumber(s string) bool {
	if s == "" || strings.Trim(s, "0123456789+-.eE") != "" {
		return false
	}
	return json.Valid([]byte(s))
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

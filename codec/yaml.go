// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/remap-core/tree"
)

// YAML reads and writes YAML documents. Decoding walks yaml.Node trees
// directly because unmarshalling into map[string]any would lose mapping
// key order.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return "yaml" }

// Decode implements Codec. An empty document decodes to Null.
func (YAML) Decode(data []byte) (tree.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML document: %w", err)
	}
	v, err := fromNode(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML document: %w", err)
	}
	return v, nil
}

// Encode implements Codec.
func (YAML) Encode(v tree.Value) ([]byte, error) {
	if v == nil {
		v = tree.Null{}
	}
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func fromNode(n *yaml.Node) (tree.Value, error) {
	switch n.Kind {
	case 0:
		// Zero node: empty input.
		return tree.Null{}, nil

	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return tree.Null{}, nil
		}
		return fromNode(n.Content[0])

	case yaml.MappingNode:
		// Mapping nodes store content as alternating key/value pairs.
		obj := tree.NewObjectSized(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", keyNode.Line)
			}
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := make(tree.Array, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.ScalarNode:
		return fromScalar(n)

	case yaml.AliasNode:
		return fromNode(n.Alias)

	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (tree.Value, error) {
	switch n.Tag {
	case "!!null":
		return tree.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: invalid bool: %w", n.Line, err)
		}
		return tree.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: invalid number: %w", n.Line, err)
		}
		return tree.Number(f), nil
	default:
		// Strings and any exotic tags (timestamps, binary) keep their raw
		// scalar text.
		return tree.Text(n.Value), nil
	}
}

func toNode(v tree.Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case tree.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case tree.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}, nil

	case tree.Number:
		f := float64(val)
		node := &yaml.Node{Kind: yaml.ScalarNode}
		// Integral values inside the exact float64 range render as ints.
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			node.Tag = "!!int"
			node.Value = strconv.FormatInt(int64(f), 10)
		} else {
			node.Tag = "!!float"
			node.Value = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return node, nil

	case tree.Text:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}, nil

	case tree.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, len(val))}
		for _, e := range val {
			child, err := toNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case *tree.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*val.Len())}
		for p := val.Oldest(); p != nil; p = p.Next() {
			child, err := toNode(p.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
				child)
		}
		return node, nil

	default:
		return nil, fmt.Errorf("cannot encode value of kind %s", v.Kind())
	}
}

var _ Codec = YAML{}

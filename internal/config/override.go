package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type overrideOp int

const (
	opSet    overrideOp = iota // key=value, key must exist
	opAdd                      // +key=value, key must not exist
	opForce                    // ++key=value, set or add
	opDelete                   // ~key
)

type override struct {
	raw   string
	op    overrideOp
	path  []string
	value *yaml.Node
}

func parseOverride(raw string) (*override, error) {
	ovr := &override{raw: raw}
	expr := raw

	switch {
	case strings.HasPrefix(expr, "++"):
		ovr.op = opForce
		expr = expr[2:]
	case strings.HasPrefix(expr, "+"):
		ovr.op = opAdd
		expr = expr[1:]
	case strings.HasPrefix(expr, "~"):
		ovr.op = opDelete
		expr = expr[1:]
	}

	key, value, hasValue := strings.Cut(expr, "=")
	if ovr.op != opDelete && !hasValue {
		return nil, errors.Wrapf(ErrInvalidOverride, "%q: expected key=value", raw)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.Wrapf(ErrInvalidOverride, "%q: empty key", raw)
	}

	ovr.path = strings.Split(key, ".")
	for _, part := range ovr.path {
		if part == "" {
			return nil, errors.Wrapf(ErrInvalidOverride, "%q: empty path element", raw)
		}
	}

	if hasValue {
		ovr.value = parseValue(value)
	}

	return ovr, nil
}

// parseValue reads value as a YAML flow value so that numbers, booleans, null and [lists] get their YAML type.
// Anything that does not parse is kept as a plain string.
func parseValue(value string) *yaml.Node {
	if value == "" {
		return stringNode("")
	}

	var doc yaml.Node

	err := yaml.Unmarshal([]byte(value), &doc)
	if err != nil || len(doc.Content) == 0 {
		return stringNode(value)
	}

	return doc.Content[0]
}

func (o *override) apply(root *yaml.Node) error {
	cur := mapping(root)
	last := len(o.path) - 1

	for _, key := range o.path[:last] {
		if cur.Kind != yaml.MappingNode {
			return errors.Wrapf(ErrInvalidOverride, "%q: %s is not a mapping", o.raw, key)
		}

		_, next := child(cur, key)
		if next == nil {
			if o.op != opAdd && o.op != opForce {
				return errors.Wrapf(ErrInvalidOverride, "%q: key %s not found", o.raw, key)
			}

			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content, stringNode(key), next)
		}

		cur = next
	}

	if cur.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrInvalidOverride, "%q: parent of %s is not a mapping", o.raw, o.path[last])
	}

	idx, node := child(cur, o.path[last])

	switch o.op {
	case opSet:
		if node == nil {
			return errors.Wrapf(ErrInvalidOverride, "%q: key not found, use +%s to add it", o.raw, o.raw)
		}

		cur.Content[idx+1] = o.value
	case opAdd:
		if node != nil {
			return errors.Wrapf(ErrInvalidOverride, "%q: key already exists", o.raw)
		}

		cur.Content = append(cur.Content, stringNode(o.path[last]), o.value)
	case opForce:
		if node != nil {
			cur.Content[idx+1] = o.value
		} else {
			cur.Content = append(cur.Content, stringNode(o.path[last]), o.value)
		}
	case opDelete:
		if node == nil {
			return errors.Wrapf(ErrInvalidOverride, "%q: key not found", o.raw)
		}

		cur.Content = append(cur.Content[:idx], cur.Content[idx+2:]...)
	}

	return nil
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// mapping unwraps a document node.
func mapping(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0]
	}

	return node
}

// child returns the index of the key node and the value node for key in a mapping node.
func child(node *yaml.Node, key string) (int, *yaml.Node) {
	if node == nil || node.Kind != yaml.MappingNode {
		return -1, nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i, node.Content[i+1]
		}
	}

	return -1, nil
}

// lookup follows a dotted path from root and returns the value node, or nil.
func lookup(root *yaml.Node, path string) (*yaml.Node, bool) {
	cur := mapping(root)
	for _, key := range strings.Split(path, ".") {
		_, cur = child(cur, key)
		if cur == nil {
			return nil, false
		}
	}

	return cur, true
}

// resolve returns a copy of node with every alias replaced by the node it points to and every merge key expanded,
// so that a subtree can be emitted on its own.
func resolve(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	if node.Kind == yaml.AliasNode {
		return resolve(node.Alias)
	}

	res := *node
	res.Anchor = ""
	res.Content = nil

	if node.Kind != yaml.MappingNode {
		for _, item := range node.Content {
			res.Content = append(res.Content, resolve(item))
		}

		return &res
	}

	explicit := make(map[string]struct{})

	for i := 0; i+1 < len(node.Content); i += 2 {
		if !isMergeKey(node.Content[i]) {
			explicit[node.Content[i].Value] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	add := func(key, value *yaml.Node) {
		if _, ok := seen[key.Value]; ok {
			return
		}

		seen[key.Value] = struct{}{}
		res.Content = append(res.Content, resolve(key), resolve(value))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if !isMergeKey(key) {
			add(key, value)
			continue
		}

		// Earlier mappings of a merge sequence take precedence, explicit keys win over all of them.
		for _, source := range mergeSources(value) {
			for j := 0; j+1 < len(source.Content); j += 2 {
				if _, ok := explicit[source.Content[j].Value]; !ok {
					add(source.Content[j], source.Content[j+1])
				}
			}
		}
	}

	return &res
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Value == "<<" && (node.Tag == "!!merge" || node.Tag == "")
}

func mergeSources(value *yaml.Node) []*yaml.Node {
	value = resolve(value)

	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}
	case yaml.SequenceNode:
		res := make([]*yaml.Node, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind == yaml.MappingNode {
				res = append(res, item)
			}
		}

		return res
	}

	return nil
}

// Package config provides the immutable, hierarchically-keyed configuration
// tree used by every layer component.
//
// A Config is built once from a YAML document (or assembled from literals in
// tests) and never modified afterwards. Getters never fail: they return the
// caller-supplied default when a key is absent or its value does not convert.
// The only validation entry point is Contains, which checks that a "required"
// reference tree is a structural (and optionally type-compatible) subset of
// the instance tree; components run that check exactly once, at construction.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// child is one ordered key/subtree pair. Sequence elements carry an empty key,
// mirroring how sequences are flattened into child lists.
type child struct {
	key  string
	node *node
}

// node is one vertex of the configuration tree: a scalar value, a list of
// children, or both empty.
type node struct {
	value    string
	children []child
}

// Config is an immutable configuration tree.
type Config struct {
	root *node
}

// New returns an empty configuration.
func New() Config {
	return Config{root: &node{}}
}

// FromYAML parses a YAML document into a configuration tree.
// Mappings become keyed children, sequences become children with empty keys
// and scalars become leaf values (kept in their string form; conversion
// happens lazily in the getters).
func FromYAML(doc string) (Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil {
		return Config{}, fmt.Errorf("config.FromYAML: parsing failed: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return New(), nil
	}
	n, err := fromYAMLNode(root.Content[0])
	if err != nil {
		return Config{}, fmt.Errorf("config.FromYAML: %w", err)
	}
	return Config{root: n}, nil
}

func fromYAMLNode(y *yaml.Node) (*node, error) {
	switch y.Kind {
	case yaml.ScalarNode:
		return &node{value: y.Value}, nil
	case yaml.MappingNode:
		n := &node{}
		for i := 0; i+1 < len(y.Content); i += 2 {
			sub, err := fromYAMLNode(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child{key: y.Content[i].Value, node: sub})
		}
		return n, nil
	case yaml.SequenceNode:
		n := &node{}
		for _, elem := range y.Content {
			sub, err := fromYAMLNode(elem)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child{node: sub})
		}
		return n, nil
	case yaml.AliasNode:
		return fromYAMLNode(y.Alias)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", y.Kind)
	}
}

// find returns the first child with the given key, or nil.
func (n *node) find(key string) *node {
	for _, c := range n.children {
		if c.key == key {
			return c.node
		}
	}
	return nil
}

// lookup walks a dotted key path ("init.port") through mapping children.
func (c Config) lookup(key string) *node {
	if c.root == nil {
		return nil
	}
	n := c.root
	for _, part := range strings.Split(key, ".") {
		if n = n.find(part); n == nil {
			return nil
		}
	}
	return n
}

// Has reports whether a key path is present in the tree.
func (c Config) Has(key string) bool {
	return c.lookup(key) != nil
}

// Sub returns the subtree at the given key path, or an empty configuration.
func (c Config) Sub(key string) Config {
	if n := c.lookup(key); n != nil {
		return Config{root: n}
	}
	return New()
}

// Sections returns the sequence elements stored at the given key path as
// individual configurations. A missing key yields an empty slice; a scalar
// value yields a one-element slice wrapping that scalar.
func (c Config) Sections(key string) []Config {
	n := c.lookup(key)
	if n == nil {
		return nil
	}
	out := make([]Config, 0, len(n.children))
	for _, ch := range n.children {
		if ch.key == "" {
			out = append(out, Config{root: ch.node})
		}
	}
	return out
}

// Without returns a copy of the configuration with the named top-level keys
// removed. The receiver is not modified.
func (c Config) Without(keys ...string) Config {
	if c.root == nil {
		return New()
	}
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	n := &node{value: c.root.value}
	for _, ch := range c.root.children {
		if !drop[ch.key] {
			n.children = append(n.children, ch)
		}
	}
	return Config{root: n}
}

// scalar conversion goes through the YAML decoder so that the accepted value
// spellings ("yes", "0x10", "1e3", ...) match the document format.
func convertScalar[T any](raw string, out *T) bool {
	return yaml.Unmarshal([]byte(raw), out) == nil
}

// leaf returns the scalar value at key, if the key holds a leaf.
func (c Config) leaf(key string) (string, bool) {
	n := c.lookup(key)
	if n == nil || len(n.children) > 0 {
		return "", false
	}
	return n.value, true
}

// GetBool gets a boolean value, or def if the key is absent or does not convert.
func (c Config) GetBool(key string, def bool) bool {
	raw, ok := c.leaf(key)
	if !ok {
		return def
	}
	var v bool
	if !convertScalar(raw, &v) {
		return def
	}
	return v
}

// GetInt gets a signed integer value, or def if the key is absent or does not convert.
func (c Config) GetInt(key string, def int) int {
	raw, ok := c.leaf(key)
	if !ok {
		return def
	}
	var v int
	if !convertScalar(raw, &v) {
		return def
	}
	return v
}

// GetUint gets an unsigned integer value, or def if the key is absent or does not convert.
func (c Config) GetUint(key string, def uint64) uint64 {
	raw, ok := c.leaf(key)
	if !ok {
		return def
	}
	var v uint64
	if !convertScalar(raw, &v) {
		return def
	}
	return v
}

// GetFloat gets a floating point value, or def if the key is absent or does not convert.
func (c Config) GetFloat(key string, def float64) float64 {
	raw, ok := c.leaf(key)
	if !ok {
		return def
	}
	var v float64
	if !convertScalar(raw, &v) {
		return def
	}
	return v
}

// GetString gets a string value, or def if the key is absent or holds a subtree.
func (c Config) GetString(key string, def string) string {
	raw, ok := c.leaf(key)
	if !ok {
		return def
	}
	return raw
}

// GetByteSeq gets a sequence of 8 bit unsigned integers, or def if the key is
// absent or any element does not convert.
func (c Config) GetByteSeq(key string, def []byte) []byte {
	n := c.lookup(key)
	if n == nil || n.value != "" {
		return def
	}
	out := make([]byte, 0, len(n.children))
	for _, ch := range n.children {
		if ch.node.value == "" || len(ch.node.children) > 0 {
			return def
		}
		var v uint8
		if !convertScalar(ch.node.value, &v) {
			return def
		}
		out = append(out, v)
	}
	return out
}

// GetUintSeq gets a sequence of 64 bit unsigned integers, or def if the key is
// absent or any element does not convert.
func (c Config) GetUintSeq(key string, def []uint64) []uint64 {
	n := c.lookup(key)
	if n == nil || n.value != "" {
		return def
	}
	out := make([]uint64, 0, len(n.children))
	for _, ch := range n.children {
		if ch.node.value == "" || len(ch.node.children) > 0 {
			return def
		}
		var v uint64
		if !convertScalar(ch.node.value, &v) {
			return def
		}
		out = append(out, v)
	}
	return out
}

// Contains checks that every key/branch present in other also exists in the
// receiver. With checkTypes set, leaf values in other are treated as type
// descriptions that the corresponding values of the receiver must satisfy:
//
//   - "bool", "int", "uint", "double"/"float": the stored scalar must convert
//   - "string": always satisfied (values are stored as strings anyway)
//   - "byteSeq"/"uintSeq": the branch must be a sequence of scalars that
//     convert to uint8/uint64 respectively
//   - anything else is treated as "string"
//
// Example: {init: {port: /dev/ttyUSB1, baudrate: 19200, seq: [1, 2, 3]}}
// contains {init: {port: string, seq: byteSeq}} with type checking enabled.
func (c Config) Contains(other Config, checkTypes bool) bool {
	if other.root == nil {
		return true
	}
	if c.root == nil {
		return len(other.root.children) == 0 && other.root.value == ""
	}
	return containsSubTree(other.root, c.root, checkTypes)
}

func containsSubTree(ref, actual *node, checkTypes bool) bool {
	for _, rc := range ref.children {
		ac := actual.find(rc.key)
		if ac == nil {
			return false
		}
		if !containsSubTree(rc.node, ac, checkTypes) {
			return false
		}
	}

	if !checkTypes || len(ref.children) > 0 || ref.value == "" {
		return true
	}

	switch ref.value {
	case "byteSeq", "uintSeq":
		if actual.value != "" {
			return false
		}
		for _, ac := range actual.children {
			if ac.node.value == "" || len(ac.node.children) > 0 {
				return false
			}
			if ref.value == "byteSeq" {
				var v uint8
				if !convertScalar(ac.node.value, &v) {
					return false
				}
			} else {
				var v uint64
				if !convertScalar(ac.node.value, &v) {
					return false
				}
			}
		}
		return true
	default:
		if len(actual.children) > 0 {
			return false
		}
		switch ref.value {
		case "bool":
			var v bool
			return convertScalar(actual.value, &v)
		case "int":
			var v int
			return convertScalar(actual.value, &v)
		case "uint":
			var v uint64
			return convertScalar(actual.value, &v)
		case "double", "float":
			var v float64
			return convertScalar(actual.value, &v)
		default: // "string" and unknown type descriptions
			return true
		}
	}
}

// Equal reports whether both trees have identical structure and values.
func (c Config) Equal(other Config) bool {
	return nodesEqual(c.root, other.root)
}

func nodesEqual(a, b *node) bool {
	if a == nil || b == nil {
		return (a == nil || len(a.children) == 0 && a.value == "") &&
			(b == nil || len(b.children) == 0 && b.value == "")
	}
	if a.value != b.value || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if a.children[i].key != b.children[i].key {
			return false
		}
		if !nodesEqual(a.children[i].node, b.children[i].node) {
			return false
		}
	}
	return true
}

// String formats the tree as a human-readable, YAML-like document.
// Intended for error messages and debug logs.
func (c Config) String() string {
	var sb strings.Builder
	if c.root != nil {
		dumpNode(&sb, c.root, 0)
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *node, level int) {
	indent := strings.Repeat(" ", 4*level)
	for _, ch := range n.children {
		key := ch.key
		if key == "" {
			key = "-"
		}
		if len(ch.node.children) == 0 {
			fmt.Fprintf(sb, "%s%s: %s\n", indent, key, ch.node.value)
		} else {
			fmt.Fprintf(sb, "%s%s:\n", indent, key)
			dumpNode(sb, ch.node, level+1)
		}
	}
}

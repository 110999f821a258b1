package keautil

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The specialized map that keeps the order of the keys. The operators
// declare HA peers as a mapping and the order of the peers in the
// rendered configuration must follow the declaration order.
//
// It supports two ways of iterating over the map:
//
// 1. Iterating by index:
//
//	for i := 0; i < m.GetSize(); i++ {
//		key, value := m.GetAt(i)
//		// Do something with the key and value.
//	}
//
// 2. Iterating with callback function:
//
//	m.ForEach(func(key TKey, value TValue) bool {
//		// Do something with the key and value.
//		return true
//	})
type OrderedMap[TKey comparable, TValue any] struct {
	keys []TKey
	data map[TKey]TValue
}

var _ yaml.Unmarshaler = (*OrderedMap[string, int])(nil)

// Creates a new instance of the ordered map.
func NewOrderedMap[TKey comparable, TValue any]() *OrderedMap[TKey, TValue] {
	return &OrderedMap[TKey, TValue]{
		keys: make([]TKey, 0),
		data: make(map[TKey]TValue),
	}
}

// Creates a new instance of the ordered map from the given keys and values.
// The extra values are ignored.
func NewOrderedMapFromEntries[TKey comparable, TValue any](keys []TKey, values []TValue) *OrderedMap[TKey, TValue] {
	m := NewOrderedMap[TKey, TValue]()
	for i, key := range keys {
		m.Set(key, values[i])
	}
	return m
}

// Sets the value for the given key. If the key already exists, the value will
// be updated and the key keeps its original position.
func (m *OrderedMap[TKey, TValue]) Set(key TKey, value TValue) {
	if m.data == nil {
		m.data = make(map[TKey]TValue)
	}
	if _, ok := m.data[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.data[key] = value
}

// Gets the value for the given key. If the key does not exist, the second
// return value will be false.
func (m *OrderedMap[TKey, TValue]) Get(key TKey) (TValue, bool) {
	value, ok := m.data[key]
	return value, ok
}

// Checks if the key exists in the map.
func (m *OrderedMap[TKey, TValue]) Has(key TKey) bool {
	_, ok := m.data[key]
	return ok
}

// Gets the key and value at the given index. It panics if the index is out of
// range.
func (m *OrderedMap[TKey, TValue]) GetAt(index int) (TKey, TValue) {
	key := m.keys[index]
	value := m.data[key]
	return key, value
}

// Returns a slice of keys in the order they were inserted.
func (m *OrderedMap[TKey, TValue]) GetKeys() []TKey {
	return m.keys
}

// Returns a slice of values in the order they were inserted.
func (m *OrderedMap[TKey, TValue]) GetValues() []TValue {
	values := make([]TValue, 0, len(m.keys))
	for _, key := range m.keys {
		values = append(values, m.data[key])
	}
	return values
}

// Returns the number of key-value pairs in the map.
func (m *OrderedMap[TKey, TValue]) GetSize() int {
	return len(m.keys)
}

// Iterates over the key-value pairs in the map in the order they were inserted.
// The iteration can be stopped by returning false from the callback function.
func (m *OrderedMap[TKey, TValue]) ForEach(callback func(TKey, TValue) bool) {
	for _, key := range m.keys {
		if !callback(key, m.data[key]) {
			break
		}
	}
}

// Decodes a YAML mapping preserving the order of the keys. The duplicated
// keys are rejected.
func (m *OrderedMap[TKey, TValue]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping", node.Line)
	}
	m.keys = make([]TKey, 0, len(node.Content)/2)
	m.data = make(map[TKey]TValue, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var (
			key   TKey
			value TValue
		)
		if err := node.Content[i].Decode(&key); err != nil {
			return errors.Wrapf(err, "line %d: invalid mapping key", node.Content[i].Line)
		}
		if m.Has(key) {
			return errors.Errorf("line %d: duplicated key %v", node.Content[i].Line, key)
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		m.Set(key, value)
	}
	return nil
}

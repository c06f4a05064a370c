// Package inibin reads and writes inibin files: packed key/value tables
// whose keys are 32-bit hashes of "Section*Name" property paths.
package inibin

import (
	"fmt"
	"sort"
)

// Table is a decoded inibin file.
//
// Property values are one of: int32, float32, int16, uint8, bool, string,
// int64, [2]uint8, [3]uint8, [4]uint8, [2]float32, [3]float32, [4]float32.
type Table struct {
	Version    uint8
	Properties map[uint32]any
}

// Get returns the raw value stored under key.
func (t *Table) Get(key uint32) (any, bool) {
	v, ok := t.Properties[key]
	return v, ok
}

// String returns the string stored under key. It fails if the key is
// missing or holds another kind of value.
func (t *Table) String(key uint32) (string, error) {
	v, ok := t.Properties[key]
	if !ok {
		return "", fmt.Errorf("key 0x%08x: missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key 0x%08x: %T is not a string", key, v)
	}
	return s, nil
}

// Keys returns the property keys in ascending order.
func (t *Table) Keys() []uint32 {
	keys := make([]uint32, 0, len(t.Properties))
	for k := range t.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

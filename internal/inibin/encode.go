package inibin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Builder assembles a version 2 inibin file. It covers the value kinds
// needed to author character configuration: int32, float32, bool, string
// and int64. Setting a key twice keeps the last value.
type Builder struct {
	values map[uint32]any
}

func NewBuilder() *Builder {
	return &Builder{values: make(map[uint32]any)}
}

func (b *Builder) SetInt32(key uint32, v int32) *Builder     { b.values[key] = v; return b }
func (b *Builder) SetFloat32(key uint32, v float32) *Builder { b.values[key] = v; return b }
func (b *Builder) SetBool(key uint32, v bool) *Builder       { b.values[key] = v; return b }
func (b *Builder) SetString(key uint32, v string) *Builder   { b.values[key] = v; return b }
func (b *Builder) SetInt64(key uint32, v int64) *Builder     { b.values[key] = v; return b }

// Set stores a value under the hash of "section*name".
func (b *Builder) Set(section, name string, v any) *Builder {
	b.values[Hash(section, name)] = v
	return b
}

// Build encodes the table. Keys are written in ascending order so equal
// tables always encode to equal bytes.
func (b *Builder) Build() ([]byte, error) {
	sets := make(map[int][]uint32)
	for k, v := range b.values {
		set, err := setOf(v)
		if err != nil {
			return nil, fmt.Errorf("key 0x%08x: %w", k, err)
		}
		sets[set] = append(sets[set], k)
	}

	var (
		body    bytes.Buffer
		strs    bytes.Buffer
		flags   uint16
		scratch [8]byte
	)
	le := binary.LittleEndian
	for set := 0; set < numSets; set++ {
		keys := sets[set]
		if len(keys) == 0 {
			continue
		}
		if len(keys) > math.MaxUint16 {
			return nil, fmt.Errorf("inibin: %d values in one set exceeds %d", len(keys), math.MaxUint16)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		flags |= 1 << set

		le.PutUint16(scratch[:2], uint16(len(keys)))
		body.Write(scratch[:2])
		for _, k := range keys {
			le.PutUint32(scratch[:4], k)
			body.Write(scratch[:4])
		}

		if set == setBool {
			packed := make([]byte, (len(keys)+7)/8)
			for i, k := range keys {
				if b.values[k].(bool) {
					packed[i/8] |= 1 << (i % 8)
				}
			}
			body.Write(packed)
			continue
		}

		for _, k := range keys {
			switch v := b.values[k].(type) {
			case int32:
				le.PutUint32(scratch[:4], uint32(v))
				body.Write(scratch[:4])
			case float32:
				le.PutUint32(scratch[:4], math.Float32bits(v))
				body.Write(scratch[:4])
			case int64:
				le.PutUint64(scratch[:8], uint64(v))
				body.Write(scratch[:8])
			case string:
				if strs.Len() > math.MaxUint16 {
					return nil, fmt.Errorf("inibin: string data exceeds %d bytes", math.MaxUint16)
				}
				le.PutUint16(scratch[:2], uint16(strs.Len()))
				body.Write(scratch[:2])
				strs.WriteString(v)
				strs.WriteByte(0)
			}
		}
	}
	if strs.Len() > math.MaxUint16 {
		return nil, fmt.Errorf("inibin: string data exceeds %d bytes", math.MaxUint16)
	}

	out := make([]byte, 5, 5+body.Len()+strs.Len())
	out[0] = 2
	le.PutUint16(out[1:3], uint16(strs.Len()))
	le.PutUint16(out[3:5], flags)
	out = append(out, body.Bytes()...)
	out = append(out, strs.Bytes()...)
	return out, nil
}

// MustBuild is Build for fixtures whose content is known to be valid.
func (b *Builder) MustBuild() []byte {
	data, err := b.Build()
	if err != nil {
		panic(err)
	}
	return data
}

func setOf(v any) (int, error) {
	switch v.(type) {
	case int32:
		return setInt32, nil
	case float32:
		return setFloat32, nil
	case bool:
		return setBool, nil
	case string:
		return setString, nil
	case int64:
		return setInt64, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

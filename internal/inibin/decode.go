package inibin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Value sets of a version 2 file, in the order they appear on disk.
// Bit n of the header flags is set when set n is present.
const (
	setInt32 = iota
	setFloat32
	setScaledByte
	setInt16
	setUint8
	setBool
	setVec3Byte
	setVec3Float
	setVec2Byte
	setVec2Float
	setVec4Byte
	setVec4Float
	setString
	setInt64
	numSets
)

var ErrTruncated = errors.New("inibin: unexpected end of data")

// Decode parses an inibin file of version 1 or 2.
func Decode(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrTruncated
	}
	switch data[0] {
	case 1:
		return decodeV1(data)
	case 2:
		return decodeV2(data)
	default:
		return nil, fmt.Errorf("inibin: unsupported version %d", data[0])
	}
}

// decodeV1 reads the old layout where every value is a string:
//
//	u8 version, [3]pad, u32 count, u32 strLen, [count]u32 keys, [count]u32 offsets, strings
func decodeV1(data []byte) (*Table, error) {
	r := &cursor{buf: data, pos: 4}
	count := r.u32()
	strLen := r.u32()
	if r.err != nil {
		return nil, r.err
	}
	if uint64(count)*8 > uint64(len(data)) {
		return nil, ErrTruncated
	}
	strings, err := stringData(data, int(strLen))
	if err != nil {
		return nil, err
	}

	keys := make([]uint32, count)
	for i := range keys {
		keys[i] = r.u32()
	}
	t := &Table{Version: 1, Properties: make(map[uint32]any, count)}
	for _, k := range keys {
		off := r.u32()
		if r.err != nil {
			return nil, r.err
		}
		s, err := cString(strings, int(off))
		if err != nil {
			return nil, fmt.Errorf("key 0x%08x: %w", k, err)
		}
		t.Properties[k] = s
	}
	return t, r.err
}

// decodeV2 reads the flagged layout:
//
//	u8 version, u16 strLen, u16 flags, sets..., strings
//
// where each present set is u16 count, [count]u32 keys, then the values.
func decodeV2(data []byte) (*Table, error) {
	r := &cursor{buf: data, pos: 1}
	strLen := r.u16()
	flags := r.u16()
	if r.err != nil {
		return nil, r.err
	}
	strings, err := stringData(data, int(strLen))
	if err != nil {
		return nil, err
	}

	t := &Table{Version: 2, Properties: make(map[uint32]any)}
	for set := 0; set < numSets; set++ {
		if flags&(1<<set) == 0 {
			continue
		}
		count := int(r.u16())
		keys := make([]uint32, count)
		for i := range keys {
			keys[i] = r.u32()
		}
		if r.err != nil {
			return nil, r.err
		}
		if err := readSet(r, set, keys, strings, t.Properties); err != nil {
			return nil, err
		}
	}
	return t, r.err
}

func readSet(r *cursor, set int, keys []uint32, strings []byte, out map[uint32]any) error {
	if set == setBool {
		packed := r.bytes((len(keys) + 7) / 8)
		if r.err != nil {
			return r.err
		}
		for i, k := range keys {
			out[k] = packed[i/8]&(1<<(i%8)) != 0
		}
		return nil
	}

	for _, k := range keys {
		var v any
		switch set {
		case setInt32:
			v = int32(r.u32())
		case setFloat32:
			v = r.f32()
		case setScaledByte:
			v = float32(r.u8()) / 10
		case setInt16:
			v = int16(r.u16())
		case setUint8:
			v = r.u8()
		case setVec3Byte:
			v = [3]uint8{r.u8(), r.u8(), r.u8()}
		case setVec3Float:
			v = [3]float32{r.f32(), r.f32(), r.f32()}
		case setVec2Byte:
			v = [2]uint8{r.u8(), r.u8()}
		case setVec2Float:
			v = [2]float32{r.f32(), r.f32()}
		case setVec4Byte:
			v = [4]uint8{r.u8(), r.u8(), r.u8(), r.u8()}
		case setVec4Float:
			v = [4]float32{r.f32(), r.f32(), r.f32(), r.f32()}
		case setString:
			off := r.u16()
			if r.err != nil {
				return r.err
			}
			s, err := cString(strings, int(off))
			if err != nil {
				return fmt.Errorf("key 0x%08x: %w", k, err)
			}
			v = s
		case setInt64:
			v = int64(r.u64())
		}
		if r.err != nil {
			return r.err
		}
		out[k] = v
	}
	return nil
}

// stringData returns the trailing string block of an inibin file.
func stringData(data []byte, n int) ([]byte, error) {
	if n > len(data) {
		return nil, fmt.Errorf("inibin: string data length %d exceeds file size %d", n, len(data))
	}
	return data[len(data)-n:], nil
}

func cString(strings []byte, off int) (string, error) {
	if off < 0 || off >= len(strings) {
		return "", fmt.Errorf("string offset %d out of range", off)
	}
	end := bytes.IndexByte(strings[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("string at offset %d is not terminated", off)
	}
	return string(strings[off : off+end]), nil
}

// cursor is a little-endian reader that records the first short read.
type cursor struct {
	buf []byte
	pos int
	err error
}

func (c *cursor) bytes(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.buf) {
		c.err = ErrTruncated
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) u8() uint8 {
	b := c.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u16() uint16 {
	b := c.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) u32() uint32 {
	b := c.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *cursor) u64() uint64 {
	b := c.bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (c *cursor) f32() float32 {
	return math.Float32frombits(c.u32())
}

package inibin

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey(t *testing.T) {
	// h = c + 65599*h over the lower-cased bytes
	var want uint32
	for _, c := range []byte("a*b") {
		want = uint32(c) + 65599*want
	}
	assert.Equal(t, want, HashKey("a*b"))
	assert.Equal(t, uint32(0), HashKey(""))
	assert.Equal(t, uint32('x'), HashKey("X"))
}

func TestHash_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Hash("MeshSkin", "SimpleSkin"), Hash("meshskin", "SIMPLESKIN"))
	assert.Equal(t, Hash("MeshSkin", "SimpleSkin"), HashKey("MeshSkin*SimpleSkin"))
	assert.NotEqual(t, Hash("MeshSkin", "Skeleton"), Hash("MeshSkin1", "Skeleton"))
}

func TestBuilderRoundTrip(t *testing.T) {
	data, err := NewBuilder().
		SetString(10, "Ashe.skn").
		SetString(3, "Ashe.skl").
		SetString(7, "").
		SetInt32(1, -42).
		SetFloat32(2, 1.5).
		SetBool(20, true).
		SetBool(21, false).
		SetBool(22, true).
		SetInt64(30, math.MaxInt64).
		Build()
	require.NoError(t, err)

	tbl, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), tbl.Version)

	s, err := tbl.String(10)
	require.NoError(t, err)
	assert.Equal(t, "Ashe.skn", s)
	s, err = tbl.String(3)
	require.NoError(t, err)
	assert.Equal(t, "Ashe.skl", s)
	s, err = tbl.String(7)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	v, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, int32(-42), v)
	v, _ = tbl.Get(2)
	assert.Equal(t, float32(1.5), v)
	v, _ = tbl.Get(20)
	assert.Equal(t, true, v)
	v, _ = tbl.Get(21)
	assert.Equal(t, false, v)
	v, _ = tbl.Get(22)
	assert.Equal(t, true, v)
	v, _ = tbl.Get(30)
	assert.Equal(t, int64(math.MaxInt64), v)

	assert.Equal(t, []uint32{1, 2, 3, 7, 10, 20, 21, 22, 30}, tbl.Keys())
}

func TestBuilderDeterministic(t *testing.T) {
	build := func() []byte {
		return NewBuilder().
			Set("MeshSkin", "SimpleSkin", "a.skn").
			Set("MeshSkin", "Skeleton", "a.skl").
			Set("MeshSkin", "Texture", "a.dds").
			MustBuild()
	}
	assert.Equal(t, build(), build())
}

func TestBuilderRejectsUnsupportedType(t *testing.T) {
	_, err := NewBuilder().Set("Data", "Count", 3).Build()
	assert.Error(t, err)
}

func TestTableString_WrongType(t *testing.T) {
	tbl := &Table{Properties: map[uint32]any{1: int32(5)}}

	_, err := tbl.String(1)
	assert.ErrorContains(t, err, "not a string")
	_, err = tbl.String(2)
	assert.ErrorContains(t, err, "missing")
}

// v2 file with one uint8, one int16, one scaled byte and one [3]float32.
func TestDecodeV2_NumericSets(t *testing.T) {
	le := binary.LittleEndian
	buf := []byte{2, 0, 0}
	buf = le.AppendUint16(buf, 1<<setScaledByte|1<<setInt16|1<<setUint8|1<<setVec3Float)

	// scaled byte
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, 100)
	buf = append(buf, 25)
	// int16
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, 101)
	buf = le.AppendUint16(buf, uint16(0xFFFF)) // -1
	// uint8
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, 102)
	buf = append(buf, 200)
	// vec3 float
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, 103)
	for _, f := range []float32{1, 2, 3} {
		buf = le.AppendUint32(buf, math.Float32bits(f))
	}

	tbl, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), tbl.Properties[100])
	assert.Equal(t, int16(-1), tbl.Properties[101])
	assert.Equal(t, uint8(200), tbl.Properties[102])
	assert.Equal(t, [3]float32{1, 2, 3}, tbl.Properties[103])
}

func TestDecodeV1(t *testing.T) {
	le := binary.LittleEndian
	strs := []byte("Garen.skn\x00Garen.skl\x00")

	buf := []byte{1, 0, 0, 0}
	buf = le.AppendUint32(buf, 2)
	buf = le.AppendUint32(buf, uint32(len(strs)))
	buf = le.AppendUint32(buf, 0xAAAA)
	buf = le.AppendUint32(buf, 0xBBBB)
	buf = le.AppendUint32(buf, 0)
	buf = le.AppendUint32(buf, 10)
	buf = append(buf, strs...)

	tbl, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), tbl.Version)
	assert.Equal(t, "Garen.skn", tbl.Properties[0xAAAA])
	assert.Equal(t, "Garen.skl", tbl.Properties[0xBBBB])
}

func TestDecodeErrors(t *testing.T) {
	valid := NewBuilder().SetString(1, "x.skn").SetInt32(2, 7).MustBuild()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown version", []byte{9, 0, 0, 0, 0}},
		{"truncated header", []byte{2, 0}},
		{"truncated body", valid[:8]},
		{"string length past end", []byte{2, 0xFF, 0xFF, 0, 0}},
		{"v1 huge count", append([]byte{1, 0, 0, 0}, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeBadStringOffset(t *testing.T) {
	le := binary.LittleEndian
	buf := []byte{2}
	buf = le.AppendUint16(buf, 2) // "a\x00"
	buf = le.AppendUint16(buf, 1<<setString)
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, 5)
	buf = le.AppendUint16(buf, 40) // past the string block
	buf = append(buf, 'a', 0)

	_, err := Decode(buf)
	assert.ErrorContains(t, err, "out of range")
}

package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMapScalarsPassThrough(t *testing.T) {
	assert.Equal(t, "x", ToMap("x"))
	assert.Equal(t, 5, ToMap(5))
	assert.Equal(t, true, ToMap(true))
	assert.Nil(t, ToMap(nil))
}

func TestToMapBytesAsHex(t *testing.T) {
	v := ToMap([]byte{0xDE, 0xAD})
	assert.Equal(t, "bytes:dead", v)
}

func TestToMapTimeAsRFC3339(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15T10:00:00Z", ToMap(ts))
}

func TestToMapNestedMapAndSlice(t *testing.T) {
	in := map[string]any{
		"items": []any{1, 2, map[string]any{"k": "v"}},
	}
	out, ok := ToMap(in).(map[string]any)
	require.True(t, ok)
	items, ok := out["items"].([]any)
	require.True(t, ok)
	assert.Equal(t, 1, items[0])
	inner, ok := items[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", inner["k"])
}

type sampleStruct struct {
	Name    string
	private string
	Nested  *sampleStruct
}

func TestToMapStructExportedFieldsOnly(t *testing.T) {
	s := sampleStruct{Name: "a", private: "hidden"}
	out, ok := ToMap(s).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", out["Name"])
	_, present := out["private"]
	assert.False(t, present)
}

func TestToMapCyclicPointerDetected(t *testing.T) {
	s := &sampleStruct{Name: "root"}
	s.Nested = s
	out, ok := ToMap(s).(map[string]any)
	require.True(t, ok)
	nested, ok := out["Nested"].(string)
	require.True(t, ok)
	assert.Contains(t, nested, "cyclic_reference")
}

func TestStringToTypeArray(t *testing.T) {
	v := StringToType("[1,2,3]")
	list, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, list, 3)
}

func TestStringToTypeObject(t *testing.T) {
	v := StringToType(`{"a":1}`)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
}

func TestStringToTypeIntFloatBool(t *testing.T) {
	assert.Equal(t, 42, StringToType("42"))
	assert.Equal(t, 3.14, StringToType("3.14"))
	assert.Equal(t, true, StringToType("true"))
	assert.Equal(t, false, StringToType("FALSE"))
}

func TestStringToTypePlainStringUnchanged(t *testing.T) {
	assert.Equal(t, "hello world", StringToType("hello world"))
}

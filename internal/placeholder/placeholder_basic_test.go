package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func root(fields map[string]any) map[string]any {
	return fields
}

func TestExpandTextBasicPath(t *testing.T) {
	v, err := ExpandText("{user_name}", root(map[string]any{"user_name": "Alice"}))
	require.NoError(t, err)
	assert.Equal(t, "Alice", v)
}

func TestExpandTextEmbeddedInText(t *testing.T) {
	v, err := ExpandText("Hello, {user_name}!", root(map[string]any{"user_name": "Alice"}))
	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice!", v)
}

func TestExpandTextMissingPlaceholderStaysLiteral(t *testing.T) {
	v, err := ExpandText("{nonexistent}", root(map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "{nonexistent}", v)
}

func TestExpandTextExplicitNilStaysLiteral(t *testing.T) {
	v, err := ExpandText("{none}", root(map[string]any{"none": nil}))
	require.NoError(t, err)
	assert.Equal(t, "{none}", v)
}

func TestExpandTextNestedPath(t *testing.T) {
	data := map[string]any{"user": map[string]any{"profile": map[string]any{"age": 30}}}
	v, err := ExpandText("{user.profile.age}", root(data))
	require.NoError(t, err)
	assert.Equal(t, 30, v)
}

func TestExpandTextBracketIndex(t *testing.T) {
	data := map[string]any{"items": []any{"a", "b", "c"}}
	v, err := ExpandText("{items[1]}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestExpandTypeInferenceWholeTemplate(t *testing.T) {
	v, err := ExpandText("{count}", root(map[string]any{"count": "42"}))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExpandTypeInferenceNotAppliedMidText(t *testing.T) {
	v, err := ExpandText("Count: {count}", root(map[string]any{"count": "42"}))
	require.NoError(t, err)
	assert.Equal(t, "Count: 42", v)
}

func TestExpandTypeInferenceBool(t *testing.T) {
	v, err := ExpandText("{flag}", root(map[string]any{"flag": "TRUE"}))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestExpandNestedDoubleBraceSource(t *testing.T) {
	data := map[string]any{"field1": "field2", "field2": "resolved"}
	v, err := ExpandText("{{field1}}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "field2", v)
}

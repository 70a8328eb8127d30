package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, src string, data map[string]any, want bool) {
	t.Helper()
	got, err := Match(src, data)
	require.NoError(t, err, "Match(%q)", src)
	assert.Equal(t, want, got, "Match(%q, %v)", src, data)
}

func TestBasicOperators(t *testing.T) {
	cases := []struct {
		src  string
		data map[string]any
		want bool
	}{
		{"$event_type == 'message'", map[string]any{"event_type": "message"}, true},
		{"$event_type == 'message'", map[string]any{"event_type": "callback"}, false},
		{"$user_id > 100", map[string]any{"user_id": 150}, true},
		{"$user_id > 100", map[string]any{"user_id": 50}, false},
		{"$user_id >= 100", map[string]any{"user_id": 100}, true},
		{"$user_id <= 100", map[string]any{"user_id": 100}, true},
		{"$text ~ 'ell'", map[string]any{"text": "hello"}, true},
		{"$text !~ 'ell'", map[string]any{"text": "hello"}, false},
	}
	for _, c := range cases {
		check(t, c.src, c.data, c.want)
	}
}

func TestMissingFields(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"$field == 'value'", false},
		{"$field != 'value'", true},
		{"$field > 100", false},
		{"$field == None", true},
		{"$field is_null", true},
		{"$field not is_null", false},
		{"$field ~ 'text'", false},
		{"$field in ['value']", false},
		{"$field not in ['value']", true},
	}
	for _, c := range cases {
		check(t, c.src, map[string]any{}, c.want)
	}
}

func TestIsNullOperator(t *testing.T) {
	check(t, "$field is_null", map[string]any{"field": nil}, true)
	check(t, "$field is_null", map[string]any{"field": ""}, true)
	check(t, "$field is_null", map[string]any{"field": "value"}, false)
	check(t, "$field not is_null", map[string]any{"field": "value"}, true)
	check(t, "$field not is_null", map[string]any{"field": nil}, false)
}

func TestListOperators(t *testing.T) {
	check(t, "$role in ['admin', 'moderator']", map[string]any{"role": "admin"}, true)
	check(t, "$role in ['admin', 'moderator']", map[string]any{"role": "user"}, false)
	check(t, "$user_id in [100, 200, 300]", map[string]any{"user_id": 200}, true)
	check(t, "$role not in ['admin', 'moderator']", map[string]any{"role": "user"}, true)
	check(t, "$role not in ['admin', 'moderator']", map[string]any{"role": "admin"}, false)
}

func TestDataTypeCoercion(t *testing.T) {
	check(t, "$value == 0.0", map[string]any{"value": 0}, true)
	check(t, "$value == 0", map[string]any{"value": 0.0}, true)
	check(t, "$value == '123'", map[string]any{"value": 123}, true)
	check(t, "$value == 123", map[string]any{"value": "123"}, true)
	check(t, "$flag == true", map[string]any{"flag": true}, true)
	check(t, "$flag == false", map[string]any{"flag": false}, true)
	check(t, "$field == None", map[string]any{"field": nil}, true)
	check(t, "$field != None", map[string]any{"field": nil}, false)
	check(t, "$field != None", map[string]any{"field": "value"}, true)
}

func TestUnquotedIdentifiers(t *testing.T) {
	check(t, `null == "null"`, map[string]any{}, true)
	check(t, `none == "none"`, map[string]any{}, true)
	check(t, `null == null`, map[string]any{}, true)
	check(t, "$field == value", map[string]any{"field": "value"}, true)
	check(t, "$field == value", map[string]any{"field": "other"}, false)
	// bare "null" is the string "null", not the None keyword -- only the
	// exact-case "None" is.
	check(t, "$field == null", map[string]any{"field": nil}, false)
}

func TestArrayAccess(t *testing.T) {
	check(t, "$event_attachment[0].type == 'photo'",
		map[string]any{"event_attachment": []any{map[string]any{"type": "photo"}}}, true)
	check(t, "$event_attachment[-1].type == 'document'",
		map[string]any{"event_attachment": []any{
			map[string]any{"type": "photo"},
			map[string]any{"type": "document"},
		}}, true)
	check(t, "$event_attachment[0].type == 'photo'", map[string]any{"event_attachment": []any{}}, false)
	check(t, "$event_attachment[0].type == 'photo'", map[string]any{}, false)
}

func TestComplexConditions(t *testing.T) {
	src := "($event_type == 'message' and $user_id > 100) or ($event_type == 'callback' and $user_id < 50)"
	check(t, src, map[string]any{"event_type": "message", "user_id": 150}, true)
	check(t, src, map[string]any{"event_type": "callback", "user_id": 30}, true)
	check(t, src, map[string]any{"event_type": "message", "user_id": 50}, false)

	nested := "$event_type == 'message' and ($user_id > 100 or $role in ['admin', 'moderator'])"
	check(t, nested, map[string]any{"event_type": "message", "user_id": 50, "role": "admin"}, true)
	check(t, nested, map[string]any{"event_type": "message", "user_id": 50, "role": "user"}, false)

	negated := "not ($event_type == 'message' and $user_id > 100)"
	check(t, negated, map[string]any{"event_type": "callback", "user_id": 150}, true)
	check(t, negated, map[string]any{"event_type": "message", "user_id": 150}, false)

	threeLevel := "($event_type == 'message' and ($user_id > 100 or ($role in ['admin'] and $user_id > 50))) " +
		"or ($event_type == 'callback' and $event_text ~ 'start')"
	check(t, threeLevel, map[string]any{"event_type": "message", "user_id": 60, "role": "admin"}, true)
	check(t, threeLevel, map[string]any{"event_type": "callback", "event_text": "start command"}, true)
}

func TestCompileReuse(t *testing.T) {
	c, err := Compile("$user_id > 100")
	require.NoError(t, err)

	got, err := c.Eval(map[string]any{"user_id": 150})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = c.Eval(map[string]any{"user_id": 10})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCompileError(t *testing.T) {
	_, err := Compile("$user_id >")
	assert.Error(t, err, "dangling operator should fail to parse")

	_, err = Compile("$user_id = 1")
	assert.Error(t, err, "bare '=' should fail to lex")
}

func TestBuildCondition(t *testing.T) {
	got := BuildCondition([]FieldSet{{
		Fields: []Field{{Key: "event_type", Value: "message"}, {Key: "user_id", Value: 123}},
	}})
	assert.Equal(t, "($event_type == 'message' and $user_id == 123)", got)
}

func TestBuildCondition_MultipleSetsJoinedWithOr(t *testing.T) {
	got := BuildCondition([]FieldSet{
		{Fields: []Field{{Key: "event_type", Value: "message"}}},
		{Fields: []Field{{Key: "event_type", Value: "callback"}}},
	})
	assert.Equal(t, "($event_type == 'message') or ($event_type == 'callback')", got)
}

func TestBuildCondition_CustomCondition(t *testing.T) {
	got := BuildCondition([]FieldSet{{
		Fields:    []Field{{Key: "event_type", Value: "message"}},
		Condition: "$user_id > 100",
	}})
	assert.Equal(t, "($event_type == 'message' and $user_id > 100)", got)
}

func TestBuildCondition_FieldsAndCustomCondition(t *testing.T) {
	got := BuildCondition([]FieldSet{{
		Fields:    []Field{{Key: "event_type", Value: "message"}, {Key: "user_id", Value: 123}},
		Condition: "$role == 'admin'",
	}})
	assert.Equal(t, "($event_type == 'message' and $user_id == 123 and $role == 'admin')", got)
}

func TestBuildCondition_RoundTripsThroughCompile(t *testing.T) {
	src := BuildCondition([]FieldSet{{
		Fields: []Field{{Key: "event_type", Value: "message"}, {Key: "user_id", Value: 42}},
	}})
	check(t, src, map[string]any{"event_type": "message", "user_id": 42}, true)
	check(t, src, map[string]any{"event_type": "message", "user_id": 1}, false)
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Kinds(t *testing.T) {
	assert.Equal(t, KindNull, Null().Kind())
	assert.True(t, Value{}.IsNull(), "zero value is null")

	s, ok := StringValue("hi").Str()
	require.True(t, ok)
	assert.Equal(t, "hi", s)

	n, ok := NumberValue(1.5).Num()
	require.True(t, ok)
	assert.Equal(t, 1.5, n)

	n, ok = IntValue(7).Num()
	require.True(t, ok)
	assert.Equal(t, 7.0, n)

	b, ok := BoolValue(true).Bool()
	require.True(t, ok)
	assert.True(t, b)

	// Accessors on the wrong kind report !ok.
	_, ok = StringValue("x").Num()
	assert.False(t, ok)
	_, ok = NumberValue(1).Str()
	assert.False(t, ok)
}

func TestValue_MapAndField(t *testing.T) {
	v := MapValue(map[string]Value{
		"name":  StringValue("swarm"),
		"count": IntValue(3),
	})

	name, ok := v.Field("name")
	require.True(t, ok)
	assert.Equal(t, "swarm", name.Text())

	_, ok = v.Field("missing")
	assert.False(t, ok)

	_, ok = StringValue("not a map").Field("name")
	assert.False(t, ok)
}

func TestValue_ConstructorsCopy(t *testing.T) {
	fields := map[string]Value{"k": StringValue("v")}
	v := MapValue(fields)
	fields["k"] = StringValue("mutated")

	got, ok := v.Field("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Text(), "the value must not observe caller mutation")

	items := []Value{IntValue(1)}
	lv := ListValue(items...)
	items[0] = IntValue(99)
	gotItems, ok := lv.Items()
	require.True(t, ok)
	assert.True(t, Equal(IntValue(1), gotItems[0]))
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "plain", StringValue("plain").Text(), "strings render verbatim, not quoted")
	assert.Equal(t, "null", Null().Text())
	assert.Equal(t, "3", IntValue(3).Text())
	assert.Equal(t, `{"a":1}`, MapValue(map[string]Value{"a": IntValue(1)}).Text())
}

func TestValue_MarshalDeterministic(t *testing.T) {
	v := MapValue(map[string]Value{
		"zebra": IntValue(1),
		"alpha": StringValue("x"),
		"mid":   BoolValue(false),
	})
	first, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"x","mid":false,"zebra":1}`, string(first), "map keys are sorted")

	for i := 0; i < 10; i++ {
		again, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	doc := `{"list":[1,"two",true,null],"nested":{"n":2.5}}`
	var v Value
	require.NoError(t, json.Unmarshal([]byte(doc), &v))

	list, ok := v.Field("list")
	require.True(t, ok)
	items, ok := list.Items()
	require.True(t, ok)
	require.Len(t, items, 4)
	assert.Equal(t, KindNumber, items[0].Kind())
	assert.Equal(t, KindString, items[1].Kind())
	assert.Equal(t, KindBool, items[2].Kind())
	assert.Equal(t, KindNull, items[3].Kind())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1,"two",true,null],"nested":{"n":2.5}}`, string(out))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{"a": []any{1, "b"}})
	require.NoError(t, err)
	a, ok := v.Field("a")
	require.True(t, ok)
	items, _ := a.Items()
	require.Len(t, items, 2)
	assert.True(t, Equal(IntValue(1), items[0]))

	_, err = FromAny(struct{}{})
	require.Error(t, err, "unsupported types are rejected, not nulled")

	// A Value passes through unchanged.
	v, err = FromAny(StringValue("s"))
	require.NoError(t, err)
	assert.Equal(t, "s", v.Text())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Null(), Value{}))
	assert.True(t, Equal(
		MapValue(map[string]Value{"k": ListValue(IntValue(1))}),
		MapValue(map[string]Value{"k": ListValue(IntValue(1))}),
	))
	assert.False(t, Equal(IntValue(1), StringValue("1")))
	assert.False(t, Equal(ListValue(IntValue(1)), ListValue(IntValue(2))))
	assert.False(t, Equal(
		MapValue(map[string]Value{"a": Null()}),
		MapValue(map[string]Value{"b": Null()}),
	))
}

func TestValue_Interface(t *testing.T) {
	v := MapValue(map[string]Value{
		"s": StringValue("x"),
		"l": ListValue(BoolValue(true)),
	})
	got := v.Interface()
	want := map[string]any{
		"s": "x",
		"l": []any{true},
	}
	assert.Equal(t, want, got)
}

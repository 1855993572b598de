package keys_test

import (
	"sort"
	"testing"

	"github.com/paveg/tablejoin/internal/keys"
	"github.com/stretchr/testify/assert"
)

func TestIsDigits(t *testing.T) {
	assert.True(t, keys.IsDigits("0"))
	assert.True(t, keys.IsDigits("00123"))
	assert.False(t, keys.IsDigits(""))
	assert.False(t, keys.IsDigits("-1"))
	assert.False(t, keys.IsDigits("1.5"))
	assert.False(t, keys.IsDigits(" 1"))
	assert.False(t, keys.IsDigits("١٢"))
}

func TestNewField_Canonical(t *testing.T) {
	assert.Equal(t, keys.Field{Text: "7", Numeric: true}, keys.NewField("007", true))
	assert.Equal(t, keys.Field{Text: "0", Numeric: true}, keys.NewField("000", true))
	assert.Equal(t, keys.Field{Text: "007"}, keys.NewField("007", false))
}

func TestExtract(t *testing.T) {
	row := []string{"x", "010", "B"}
	key := keys.Extract(row, []int{2, 1}, []bool{false, true})

	assert.Equal(t, keys.Key{{Text: "B"}, {Text: "10", Numeric: true}}, key)
	assert.Equal(t, []string{"B", "10"}, key.Fields())
	assert.Equal(t, `("B", 10)`, key.String())
}

func TestKey_CompareNumericVsString(t *testing.T) {
	num := func(s string) keys.Key { return keys.Key{keys.NewField(s, true)} }
	str := func(s string) keys.Key { return keys.Key{keys.NewField(s, false)} }

	assert.Equal(t, -1, num("2").Compare(num("10")))
	assert.Equal(t, 1, str("2").Compare(str("10")))
	assert.Equal(t, 0, num("0010").Compare(num("10")))
	assert.Equal(t, -1, num("99999999999999999999998").Compare(num("99999999999999999999999")))
}

func TestKey_CompareTupleWise(t *testing.T) {
	k := func(a, b string) keys.Key {
		return keys.Key{keys.NewField(a, false), keys.NewField(b, true)}
	}

	list := []keys.Key{k("b", "1"), k("a", "10"), k("a", "9"), k("b", "0")}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Compare(list[j]) < 0 })

	assert.Equal(t, []keys.Key{k("a", "9"), k("a", "10"), k("b", "0"), k("b", "1")}, list)
	assert.Equal(t, -1, keys.Key{{Text: "a"}}.Compare(k("a", "1")))
}

func TestKey_EqualityAndEncoding(t *testing.T) {
	a := keys.Key{keys.NewField("ab", false), keys.NewField("c", false)}
	b := keys.Key{keys.NewField("a", false), keys.NewField("bc", false)}
	c := keys.Key{keys.NewField("ab", false), keys.NewField("c", false)}

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.NotEqual(t, a.Encode(), b.Encode())
	assert.Equal(t, a.Encode(), c.Encode())
	assert.Equal(t, a.Hash(), c.Hash())

	// Same text, different type never collides.
	assert.NotEqual(t, keys.Key{keys.NewField("1", true)}.Encode(), keys.Key{keys.NewField("1", false)}.Encode())
}

func TestKey_IsSentinel(t *testing.T) {
	assert.True(t, keys.Key{{Text: ""}}.IsSentinel())
	assert.False(t, keys.Key{{Text: ""}, {Text: ""}}.IsSentinel())
	assert.False(t, keys.Key{{Text: "a"}}.IsSentinel())
	assert.False(t, keys.Key{}.IsSentinel())
}

package defaults

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/protopool/internal/typegraph"
)

func TestParseIntegers(t *testing.T) {
	tests := []struct {
		kind     typegraph.Kind
		text     string
		expected any
	}{
		{typegraph.KindInt32, "42", int32(42)},
		{typegraph.KindInt32, "-2147483648", int32(math.MinInt32)},
		{typegraph.KindInt32, "0x7fffffff", int32(math.MaxInt32)},
		{typegraph.KindSint64, "-0x8000000000000000", int64(math.MinInt64)},
		{typegraph.KindUint32, "037", uint32(31)},
		{typegraph.KindUint64, "18446744073709551615", uint64(math.MaxUint64)},
		{typegraph.KindFixed32, "0", uint32(0)},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"_"+tt.text, func(t *testing.T) {
			v, err := Parse(tt.kind, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.Interface())
		})
	}
}

func TestParseIntegerRejects(t *testing.T) {
	tests := []struct {
		kind typegraph.Kind
		text string
	}{
		{typegraph.KindInt32, "2147483648"},
		{typegraph.KindInt32, "-2147483649"},
		{typegraph.KindUint32, "-1"},
		{typegraph.KindUint32, "4294967296"},
		{typegraph.KindInt64, "1.5"},
		{typegraph.KindInt64, "1_000"},
		{typegraph.KindInt64, ""},
		{typegraph.KindInt32, "08"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"_"+tt.text, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.text)
			var typeErr *TypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, tt.text, typeErr.Actual)
			assert.Equal(t, Expected(tt.kind), typeErr.Expected)
		})
	}
}

func TestParseFloats(t *testing.T) {
	v, err := Parse(typegraph.KindDouble, "1.5e3")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, v.AsFloat())

	v, err = Parse(typegraph.KindDouble, "-inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.AsFloat(), -1))

	v, err = Parse(typegraph.KindFloat, "nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.AsFloat()))

	v, err = Parse(typegraph.KindDouble, "10")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.AsFloat())

	_, err = Parse(typegraph.KindDouble, "ten")
	assert.Error(t, err)
	_, err = Parse(typegraph.KindFloat, "1e40")
	assert.Error(t, err)
}

func TestParseBoolStringBytes(t *testing.T) {
	v, err := Parse(typegraph.KindBool, "true")
	require.NoError(t, err)
	assert.True(t, v.AsBool())

	_, err = Parse(typegraph.KindBool, "TRUE")
	assert.Error(t, err)

	v, err = Parse(typegraph.KindString, `raw \n text`)
	require.NoError(t, err)
	assert.Equal(t, `raw \n text`, v.AsString())

	v, err = Parse(typegraph.KindBytes, `a\001\x7f\n\"`)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 1, 0x7f, '\n', '"'}, v.AsBytes())

	_, err = Parse(typegraph.KindBytes, `bad\q`)
	assert.Error(t, err)
}

func TestParseEnum(t *testing.T) {
	name, err := ParseEnum("ZERO")
	require.NoError(t, err)
	assert.Equal(t, "ZERO", name)

	_, err = ParseEnum(`"ZERO"`)
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "an enum value identifier", typeErr.Expected)
	assert.Equal(t, `"ZERO"`, typeErr.Actual)
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in       string
		expected []byte
	}{
		{"plain", []byte("plain")},
		{`\t\r\a\b\f\v\\\'\?`, []byte("\t\r\a\b\f\v\\'?")},
		{`\0`, []byte{0}},
		{`\377`, []byte{0xff}},
		{`\1234`, []byte{0123, '4'}},
		{`\xAbc`, []byte{0xab, 'c'}},
	}
	for _, tt := range tests {
		got, err := Unescape(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got, tt.in)
	}

	for _, bad := range []string{`\`, `\x`, `\400`, `\z`} {
		_, err := Unescape(bad)
		assert.Error(t, err, bad)
	}
}

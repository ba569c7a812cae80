package utility

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	a := map[string]interface{}{"b": float64(1), "a": "x"}
	b := map[string]interface{}{"a": "x", "b": float64(1)}

	ca, err := CanonicalJSON(a)
	require.NoError(t, err)
	cb, err := CanonicalJSON(b)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, `{"a":"x","b":1}`, ca)
}

func TestCanonicalJSONNested(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"z":[1,2.5,null],"a":{"k":true}}`), &doc))

	got, err := CanonicalJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"k":true},"z":[1,2.5,null]}`, got)
}

func TestCanonicalJSONWholeFloatsAsIntegers(t *testing.T) {
	got, err := CanonicalJSON(map[string]interface{}{"n": float64(7)})
	require.NoError(t, err)
	assert.Equal(t, `{"n":7}`, got)
}

func TestCanonicalJSONRejectsUnsupportedType(t *testing.T) {
	_, err := CanonicalJSON(map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestScalarToString(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
		ok   bool
	}{
		{"abc", "abc", true},
		{float64(443), "443", true},
		{float64(1.5), "1.5", true},
		{true, "true", true},
		{false, "false", true},
		{[]interface{}{"x"}, "", false},
		{map[string]interface{}{}, "", false},
		{nil, "", false},
	}
	for _, tc := range cases {
		got, ok := ScalarToString(tc.in)
		assert.Equal(t, tc.ok, ok)
		assert.Equal(t, tc.want, got)
	}
}

func TestResolveJSONPathField(t *testing.T) {
	doc := map[string]interface{}{"host": "h1"}

	got, err := ResolveJSONPath(doc, "$.host")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"h1"}, got)

	// Dạng viết tắt không có "$."
	got, err = ResolveJSONPath(doc, "host")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"h1"}, got)
}

func TestResolveJSONPathArray(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"id":"a"},{"id":"b"}]}`), &doc))

	got, err := ResolveJSONPath(doc, "$.items[*].id")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, got)

	got, err = ResolveJSONPath(doc, "$.items[1].id")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b"}, got)
}

func TestResolveJSONPathMissingReturnsEmpty(t *testing.T) {
	doc := map[string]interface{}{"host": "h1"}

	got, err := ResolveJSONPath(doc, "$.user.name")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ResolveJSONPath(doc, "$.host[0]")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveJSONPathInvalid(t *testing.T) {
	doc := map[string]interface{}{}
	for _, path := range []string{"", "$.items[", "$.items[x]", "$.."} {
		_, err := ResolveJSONPath(doc, path)
		assert.Error(t, err, "path %q", path)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"
	plaintext := []byte(`{"url":"https://hooks.example.com","secret":"s3cret"}`)

	encoded, err := EncryptAESGCM(key, plaintext)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "s3cret")

	decoded, err := DecryptAESGCM(key, encoded)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decoded)
}

func TestEncryptProducesDistinctCiphertexts(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"

	first, err := EncryptAESGCM(key, []byte("same"))
	require.NoError(t, err)
	second, err := EncryptAESGCM(key, []byte("same"))
	require.NoError(t, err)

	// Nonce ngẫu nhiên nên hai lần mã hóa không trùng nhau
	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"
	other := "0000000000000000000000000000000000000000000000000000000000000002"

	encoded, err := EncryptAESGCM(key, []byte("payload"))
	require.NoError(t, err)

	_, err = DecryptAESGCM(other, encoded)
	assert.Error(t, err)
}

func TestDecryptRejectsBadInput(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"

	_, err := DecryptAESGCM(key, "not-base64!!")
	assert.Error(t, err)

	_, err = DecryptAESGCM(key, "QQ==")
	assert.Error(t, err)
}

func TestCryptoRejectsBadKey(t *testing.T) {
	_, err := EncryptAESGCM("zz", []byte("x"))
	assert.Error(t, err)

	_, err = EncryptAESGCM("abcd", []byte("x"))
	assert.Error(t, err)
}

func TestSliceDedupeKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, SliceDedupe([]string{"b", "a", "b", "c", "a"}))
}

func TestTrimNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, TrimNonEmpty([]string{" a ", "", "  ", "b"}))
}

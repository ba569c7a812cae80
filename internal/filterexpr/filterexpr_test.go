package filterexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, raw string) *Expression {
	t.Helper()
	expr, err := Compile([]byte(raw))
	require.NoError(t, err)
	return expr
}

func TestCompileInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"node không phải object", `[1,2]`},
		{"and không phải mảng", `{"and": {"field":"a"}}`},
		{"clause thiếu field", `{"op":"==","value":1}`},
		{"operator lạ", `{"field":"a","op":"=~","value":1}`},
		{"in với value scalar", `{"field":"a","op":"in","value":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]byte(tt.raw))
			require.Error(t, err)
			var invalidErr *InvalidExpressionError
			assert.ErrorAs(t, err, &invalidErr)
		})
	}
}

func TestMatchScalarOps(t *testing.T) {
	row := Row{"host": "h1", "count": float64(5), "note": nil}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"eq đúng", `{"field":"host","op":"==","value":"h1"}`, true},
		{"eq sai", `{"field":"host","op":"==","value":"h2"}`, false},
		{"neq", `{"field":"host","op":"!=","value":"h2"}`, true},
		{"lt số", `{"field":"count","op":"<","value":10}`, true},
		{"gte số", `{"field":"count","op":">=","value":5}`, true},
		{"gt sai", `{"field":"count","op":">","value":5}`, false},
		{"in", `{"field":"host","op":"in","value":["h1","h2"]}`, true},
		{"not_in", `{"field":"host","op":"not_in","value":["h2","h3"]}`, true},
		{"is_null field nil", `{"field":"note","op":"is_null"}`, true},
		{"is_null field vắng mặt", `{"field":"missing","op":"is_null"}`, true},
		{"is_not_null", `{"field":"host","op":"is_not_null"}`, true},
		{"field vắng mặt fail-closed", `{"field":"missing","op":"==","value":"x"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := mustCompile(t, tt.raw)
			assert.Equal(t, tt.want, Match(expr, row, nil, "test-rule"))
		})
	}
}

func TestMatchLike(t *testing.T) {
	row := Row{"msg": "Disk Full on host-42"}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"like exact", `{"field":"msg","op":"like","value":"Disk Full on host-42"}`, true},
		{"like prefix", `{"field":"msg","op":"like","value":"Disk%"}`, true},
		{"like suffix", `{"field":"msg","op":"like","value":"%host-42"}`, true},
		{"like giữa chuỗi", `{"field":"msg","op":"like","value":"%Full%"}`, true},
		{"like case-sensitive", `{"field":"msg","op":"like","value":"disk%"}`, false},
		{"ilike case-folded", `{"field":"msg","op":"ilike","value":"disk%"}`, true},
		{"ilike không khớp", `{"field":"msg","op":"ilike","value":"%memory%"}`, false},
		{"like nhiều wildcard theo thứ tự", `{"field":"msg","op":"like","value":"%Disk%host%"}`, true},
		{"like sai thứ tự", `{"field":"msg","op":"like","value":"%host%Disk%"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := mustCompile(t, tt.raw)
			assert.Equal(t, tt.want, Match(expr, row, nil, "test-rule"))
		})
	}
}

func TestMatchBooleanTree(t *testing.T) {
	row := Row{"host": "h1", "severity": "critical"}

	t.Run("and rỗng là true", func(t *testing.T) {
		expr := mustCompile(t, `{"and":[]}`)
		assert.True(t, Match(expr, row, nil, "r"))
	})
	t.Run("or rỗng là false", func(t *testing.T) {
		expr := mustCompile(t, `{"or":[]}`)
		assert.False(t, Match(expr, row, nil, "r"))
	})
	t.Run("and tất cả đúng", func(t *testing.T) {
		expr := mustCompile(t, `{"and":[
			{"field":"host","op":"==","value":"h1"},
			{"field":"severity","op":"==","value":"critical"}]}`)
		assert.True(t, Match(expr, row, nil, "r"))
	})
	t.Run("and một sai", func(t *testing.T) {
		expr := mustCompile(t, `{"and":[
			{"field":"host","op":"==","value":"h1"},
			{"field":"severity","op":"==","value":"low"}]}`)
		assert.False(t, Match(expr, row, nil, "r"))
	})
	t.Run("or một đúng", func(t *testing.T) {
		expr := mustCompile(t, `{"or":[
			{"field":"host","op":"==","value":"h9"},
			{"field":"severity","op":"==","value":"critical"}]}`)
		assert.True(t, Match(expr, row, nil, "r"))
	})
	t.Run("not đảo kết quả", func(t *testing.T) {
		expr := mustCompile(t, `{"not":{"field":"host","op":"==","value":"h1"}}`)
		assert.False(t, Match(expr, row, nil, "r"))
	})
	t.Run("lồng nhau", func(t *testing.T) {
		expr := mustCompile(t, `{"and":[
			{"or":[
				{"field":"host","op":"==","value":"h1"},
				{"field":"host","op":"==","value":"h2"}]},
			{"not":{"field":"severity","op":"==","value":"low"}}]}`)
		assert.True(t, Match(expr, row, nil, "r"))
	})
}

func TestMatchRelatedModel(t *testing.T) {
	instance := Row{"variant": "disk-full"}
	entities := []Row{
		{"type": "host", "value": "h1"},
		{"type": "host", "value": "h2"},
	}
	loader := func(model string) []Row {
		if model == "Entity" {
			return entities
		}
		return nil
	}

	t.Run("existential: một row liên quan khớp là đủ", func(t *testing.T) {
		expr := mustCompile(t, `{"and":[{"model":"Entity","field":"value","op":"==","value":"h2"}]}`)
		assert.True(t, Match(expr, instance, loader, "snooze-h2"))
	})
	t.Run("không row nào khớp", func(t *testing.T) {
		expr := mustCompile(t, `{"model":"Entity","field":"value","op":"==","value":"h9"}`)
		assert.False(t, Match(expr, instance, loader, "r"))
	})
	t.Run("model không tồn tại", func(t *testing.T) {
		expr := mustCompile(t, `{"model":"Unknown","field":"value","op":"==","value":"h1"}`)
		assert.False(t, Match(expr, instance, loader, "r"))
	})
	t.Run("loader nil với model", func(t *testing.T) {
		expr := mustCompile(t, `{"model":"Entity","field":"value","op":"==","value":"h1"}`)
		assert.False(t, Match(expr, instance, nil, "r"))
	})
}

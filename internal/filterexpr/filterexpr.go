// Package filterexpr là bộ đánh giá biểu thức filter thuần (không side effect).
// Biểu thức là một cây JSON boolean:
//
//	expr   := {"and": [expr,...]} | {"or": [expr,...]} | {"not": expr} | clause
//	clause := {"model": NAME?, "field": NAME, "op": OP, "value": SCALAR|ARRAY}
//
// Compile validate biểu thức lúc lưu rule; Match đánh giá trên hot path.
package filterexpr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"meta_response/internal/logger"
)

// Các operator được hỗ trợ trong clause
const (
	OpEq        = "=="
	OpNeq       = "!="
	OpLt        = "<"
	OpLte       = "<="
	OpGt        = ">"
	OpGte       = ">="
	OpIn        = "in"
	OpNotIn     = "not_in"
	OpLike      = "like"
	OpIlike     = "ilike"
	OpIsNull    = "is_null"
	OpIsNotNull = "is_not_null"
)

var validOps = map[string]bool{
	OpEq: true, OpNeq: true,
	OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpIn: true, OpNotIn: true,
	OpLike: true, OpIlike: true,
	OpIsNull: true, OpIsNotNull: true,
}

// Row là một bản ghi được đánh giá: map field → giá trị
type Row map[string]interface{}

// RelatedLoader resolve các model liên quan được clause tham chiếu qua "model".
// Trả về danh sách row của model đó (existential semantics: chỉ cần một row khớp).
type RelatedLoader func(model string) []Row

// nodeKind phân loại node trong cây biểu thức
type nodeKind int

const (
	nodeAnd nodeKind = iota
	nodeOr
	nodeNot
	nodeClause
)

// Expression là biểu thức đã compile, sẵn sàng đánh giá
type Expression struct {
	kind     nodeKind
	children []*Expression // cho and/or/not
	clause   *Clause       // cho nodeClause
}

// Clause là một điều kiện lá
type Clause struct {
	Model string
	Field string
	Op    string
	Value interface{}
}

// InvalidExpressionError báo biểu thức sai ngữ pháp, raise lúc lưu rule
type InvalidExpressionError struct {
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	return "biểu thức filter không hợp lệ: " + e.Reason
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidExpressionError{Reason: fmt.Sprintf(format, args...)}
}

// Compile parse và validate một biểu thức từ JSON thô.
// Mọi lỗi ngữ pháp được phát hiện tại đây, không để tới lúc đánh giá.
func Compile(raw []byte) (*Expression, error) {
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, invalidf("JSON không parse được: %v", err)
	}
	return CompileTree(tree)
}

// CompileTree compile từ cây đã unmarshal (map[string]interface{})
func CompileTree(tree interface{}) (*Expression, error) {
	node, ok := tree.(map[string]interface{})
	if !ok {
		return nil, invalidf("node phải là object, nhận được %T", tree)
	}

	if operands, ok := node["and"]; ok {
		return compileList(nodeAnd, "and", operands)
	}
	if operands, ok := node["or"]; ok {
		return compileList(nodeOr, "or", operands)
	}
	if operand, ok := node["not"]; ok {
		child, err := CompileTree(operand)
		if err != nil {
			return nil, err
		}
		return &Expression{kind: nodeNot, children: []*Expression{child}}, nil
	}

	return compileClause(node)
}

func compileList(kind nodeKind, name string, operands interface{}) (*Expression, error) {
	list, ok := operands.([]interface{})
	if !ok {
		return nil, invalidf("%q yêu cầu một mảng operand", name)
	}
	expr := &Expression{kind: kind}
	for _, operand := range list {
		child, err := CompileTree(operand)
		if err != nil {
			return nil, err
		}
		expr.children = append(expr.children, child)
	}
	return expr, nil
}

func compileClause(node map[string]interface{}) (*Expression, error) {
	field, _ := node["field"].(string)
	if field == "" {
		return nil, invalidf("clause thiếu field")
	}
	op, _ := node["op"].(string)
	if !validOps[op] {
		return nil, invalidf("operator %q không được hỗ trợ", op)
	}

	clause := &Clause{
		Field: field,
		Op:    op,
		Value: node["value"],
	}
	if model, ok := node["model"].(string); ok {
		clause.Model = model
	}

	// in/not_in yêu cầu value là mảng
	if op == OpIn || op == OpNotIn {
		if _, ok := clause.Value.([]interface{}); !ok {
			return nil, invalidf("operator %q yêu cầu value là mảng", op)
		}
	}

	return &Expression{kind: nodeClause, clause: clause}, nil
}

// Match đánh giá biểu thức trên một row chính.
// ruleName chỉ dùng để ghi nhận khi gặp field không tồn tại (fail-closed).
func Match(expr *Expression, row Row, loader RelatedLoader, ruleName string) bool {
	switch expr.kind {
	case nodeAnd:
		// and rỗng ⇒ true
		for _, child := range expr.children {
			if !Match(child, row, loader, ruleName) {
				return false
			}
		}
		return true
	case nodeOr:
		// or rỗng ⇒ false
		for _, child := range expr.children {
			if Match(child, row, loader, ruleName) {
				return true
			}
		}
		return false
	case nodeNot:
		return !Match(expr.children[0], row, loader, ruleName)
	case nodeClause:
		return matchClause(expr.clause, row, loader, ruleName)
	}
	return false
}

// matchClause đánh giá một clause. Clause có model tham chiếu sẽ đánh giá trên
// từng row của model đó: true nếu BẤT KỲ row nào thỏa (tương tự SQL exists).
func matchClause(clause *Clause, row Row, loader RelatedLoader, ruleName string) bool {
	if clause.Model == "" {
		return evalClauseOnRow(clause, row, ruleName)
	}

	if loader == nil {
		return false
	}
	for _, related := range loader(clause.Model) {
		if evalClauseOnRow(clause, related, ruleName) {
			return true
		}
	}
	return false
}

func evalClauseOnRow(clause *Clause, row Row, ruleName string) bool {
	value, exists := row[clause.Field]

	// is_null / is_not_null đánh giá được cả khi field vắng mặt
	switch clause.Op {
	case OpIsNull:
		return !exists || value == nil
	case OpIsNotNull:
		return exists && value != nil
	}

	if !exists {
		// Field không tồn tại: fail-closed, ghi nhận rule để quan sát
		logger.GetAppLogger().WithField("rule", ruleName).WithField("field", clause.Field).
			Warn("Filter tham chiếu field không tồn tại, clause trả về false")
		return false
	}

	switch clause.Op {
	case OpEq:
		return scalarEqual(value, clause.Value)
	case OpNeq:
		return !scalarEqual(value, clause.Value)
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(value, clause.Value, clause.Op)
	case OpIn:
		list, _ := clause.Value.([]interface{})
		for _, item := range list {
			if scalarEqual(value, item) {
				return true
			}
		}
		return false
	case OpNotIn:
		list, _ := clause.Value.([]interface{})
		for _, item := range list {
			if scalarEqual(value, item) {
				return false
			}
		}
		return true
	case OpLike:
		return likeMatch(toString(value), toString(clause.Value), false)
	case OpIlike:
		return likeMatch(toString(value), toString(clause.Value), true)
	}
	return false
}

// scalarEqual so sánh hai scalar; số được so sánh theo giá trị,
// chuỗi so sánh case-sensitive.
func scalarEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return toString(a) == toString(b)
}

// compareOrdered so sánh thứ tự: số theo giá trị, còn lại theo thứ tự chuỗi
func compareOrdered(a, b interface{}, op string) bool {
	var cmp int
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				cmp = -1
			case af > bf:
				cmp = 1
			}
			return cmpResult(cmp, op)
		}
	}
	cmp = strings.Compare(toString(a), toString(b))
	return cmpResult(cmp, op)
}

func cmpResult(cmp int, op string) bool {
	switch op {
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	}
	return false
}

// likeMatch so khớp pattern với wildcard %. caseFold=true cho ilike.
func likeMatch(value, pattern string, caseFold bool) bool {
	if caseFold {
		value = strings.ToLower(value)
		pattern = strings.ToLower(pattern)
	}

	// Không có wildcard: so khớp chính xác
	if !strings.Contains(pattern, "%") {
		return value == pattern
	}

	parts := strings.Split(pattern, "%")

	// Phần đầu phải là prefix, phần cuối phải là suffix,
	// các phần giữa xuất hiện theo thứ tự
	if parts[0] != "" {
		if !strings.HasPrefix(value, parts[0]) {
			return false
		}
		value = value[len(parts[0]):]
	}
	last := parts[len(parts)-1]
	if last != "" {
		if !strings.HasSuffix(value, last) {
			return false
		}
		value = value[:len(value)-len(last)]
	}
	for _, mid := range parts[1 : len(parts)-1] {
		if mid == "" {
			continue
		}
		idx := strings.Index(value, mid)
		if idx < 0 {
			return false
		}
		value = value[idx+len(mid):]
	}
	return true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}

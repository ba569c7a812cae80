package utility

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveJSONPath resolve một JSON-path rút gọn trên document đã unmarshal.
// Hỗ trợ: "$" (gốc), ".name" (truy cập field), "[idx]" (phần tử mảng),
// "[*]" (mọi phần tử mảng). Path không khớp trả về slice rỗng, không lỗi.
// Path sai cú pháp trả về lỗi.
func ResolveJSONPath(doc interface{}, path string) ([]interface{}, error) {
	segments, err := parseJSONPath(path)
	if err != nil {
		return nil, err
	}

	current := []interface{}{doc}
	for _, seg := range segments {
		var next []interface{}
		for _, node := range current {
			switch seg.kind {
			case segField:
				m, ok := node.(map[string]interface{})
				if !ok {
					continue
				}
				if v, exists := m[seg.name]; exists {
					next = append(next, v)
				}
			case segIndex:
				arr, ok := node.([]interface{})
				if !ok {
					continue
				}
				if seg.index >= 0 && seg.index < len(arr) {
					next = append(next, arr[seg.index])
				}
			case segWildcard:
				arr, ok := node.([]interface{})
				if !ok {
					continue
				}
				next = append(next, arr...)
			}
		}
		current = next
		if len(current) == 0 {
			return nil, nil
		}
	}

	return current, nil
}

type segmentKind int

const (
	segField segmentKind = iota
	segIndex
	segWildcard
)

type pathSegment struct {
	kind  segmentKind
	name  string
	index int
}

func parseJSONPath(path string) ([]pathSegment, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, fmt.Errorf("json-path rỗng")
	}
	if strings.HasPrefix(p, "$") {
		p = p[1:]
	}

	var segments []pathSegment
	for len(p) > 0 {
		switch {
		case p[0] == '.':
			p = p[1:]
			end := strings.IndexAny(p, ".[")
			if end == -1 {
				end = len(p)
			}
			name := p[:end]
			if name == "" {
				return nil, fmt.Errorf("tên field rỗng trong json-path")
			}
			segments = append(segments, pathSegment{kind: segField, name: name})
			p = p[end:]
		case p[0] == '[':
			close := strings.IndexByte(p, ']')
			if close == -1 {
				return nil, fmt.Errorf("thiếu ']' trong json-path")
			}
			inner := p[1:close]
			if inner == "*" {
				segments = append(segments, pathSegment{kind: segWildcard})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("chỉ số mảng không hợp lệ: %q", inner)
				}
				segments = append(segments, pathSegment{kind: segIndex, index: idx})
			}
			p = p[close+1:]
		default:
			// Cho phép viết "host" thay vì "$.host"
			end := strings.IndexAny(p, ".[")
			if end == -1 {
				end = len(p)
			}
			segments = append(segments, pathSegment{kind: segField, name: p[:end]})
			p = p[end:]
		}
	}

	return segments, nil
}

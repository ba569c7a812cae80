package utility

import "strings"

// SliceContains kiểm tra slice có chứa phần tử hay không
func SliceContains[T comparable](items []T, target T) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// SliceDedupe loại bỏ phần tử trùng, giữ nguyên thứ tự xuất hiện đầu tiên
func SliceDedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

// TrimNonEmpty trim từng chuỗi và loại bỏ chuỗi rỗng
func TrimNonEmpty(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

package signalsvc

import (
	"regexp"
	"strings"

	models "meta_response/internal/api/signal/models"
	"meta_response/internal/logger"
	"meta_response/internal/utility"
)

// Candidate là một giá trị đã trích xuất, chưa được persist
type Candidate struct {
	EntityType models.EntityType
	Value      string
}

// ExtractCandidates trích xuất các (type, value) từ raw payload theo các quy tắc.
// Type có field/regex hỏng được log và bỏ qua, không bao giờ làm hỏng toàn bộ extract.
func ExtractCandidates(raw map[string]interface{}, types []models.EntityType) []Candidate {
	var result []Candidate
	seen := map[string]bool{}

	for _, entityType := range types {
		if !entityType.Enabled {
			continue
		}
		for _, value := range extractForType(raw, entityType) {
			key := entityType.ID.Hex() + "\x00" + value
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, Candidate{EntityType: entityType, Value: value})
		}
	}
	return result
}

// extractForType trả về các giá trị của một type: JSON-path chọn, regex lọc/bắt nhóm
func extractForType(raw map[string]interface{}, entityType models.EntityType) []string {
	if entityType.Field == "" {
		return nil
	}

	resolved, err := utility.ResolveJSONPath(raw, entityType.Field)
	if err != nil {
		logger.GetAppLogger().WithField("entityType", entityType.Name).WithField("field", entityType.Field).
			Warn("JSON-path của entity type không hợp lệ, bỏ qua type này")
		return nil
	}

	var texts []string
	for _, value := range resolved {
		texts = append(texts, textualize(value)...)
	}

	var pattern *regexp.Regexp
	if entityType.RegularExpression != "" {
		pattern, err = regexp.Compile(entityType.RegularExpression)
		if err != nil {
			logger.GetAppLogger().WithField("entityType", entityType.Name).
				Warn("Regex của entity type không compile được, bỏ qua type này")
			return nil
		}
	}

	var values []string
	for _, text := range texts {
		if pattern == nil {
			values = append(values, strings.TrimSpace(text))
			continue
		}
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			captured := match[0]
			if len(match) > 1 {
				captured = match[1]
			}
			values = append(values, strings.TrimSpace(captured))
		}
	}

	return utility.SliceDedupe(utility.TrimNonEmpty(values))
}

// textualize chuẩn hóa một giá trị JSON thành text: scalar theo canonical form,
// mảng được duyệt từng phần tử; object bị bỏ qua.
func textualize(value interface{}) []string {
	if list, ok := value.([]interface{}); ok {
		var out []string
		for _, item := range list {
			out = append(out, textualize(item)...)
		}
		return out
	}
	if text, ok := utility.ScalarToString(value); ok {
		return []string{text}
	}
	return nil
}

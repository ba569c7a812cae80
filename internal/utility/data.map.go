package utility

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi struct thành map qua bson marshal/unmarshal.
// Dùng ở tầng CRUD để đưa model vào truy vấn mongo.
func ToMap(s interface{}) (map[string]interface{}, error) {
	var stringInterfaceMap map[string]interface{}
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	if err := bson.Unmarshal(raw, &stringInterfaceMap); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return stringInterfaceMap, nil
}

// MapToJSON chuyển đổi map thành chuỗi JSON
func MapToJSON(m map[string]interface{}) (string, error) {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("lỗi khi chuyển đổi map thành JSON: %v", err)
	}
	return string(jsonBytes), nil
}

// JSONToMap chuyển đổi chuỗi JSON thành map
func JSONToMap(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("lỗi khi chuyển đổi JSON thành map: %v", err)
	}
	return result, nil
}

// MapContainsKey kiểm tra xem map có chứa key hay không
func MapContainsKey(m map[string]interface{}, key string) bool {
	if m == nil {
		return false
	}
	_, exists := m[key]
	return exists
}

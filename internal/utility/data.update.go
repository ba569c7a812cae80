package utility

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// JSONToStrings parse một chuỗi JSON mảng string
func JSONToStrings(s string, out *[]string) error {
	return json.Unmarshal([]byte(s), out)
}

// NonZeroFields trả về map các field khác zero của model, key theo bson tag.
// Dùng để build $set khi update: field không gửi lên (zero value) không bị ghi đè.
// Các field _id, createdAt, updatedAt luôn bị loại.
func NonZeroFields(model interface{}) (map[string]interface{}, error) {
	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("model là nil")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model phải là struct hoặc pointer đến struct")
	}

	result := map[string]interface{}{}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}

		bsonTag := strings.Split(typ.Field(i).Tag.Get("bson"), ",")[0]
		if bsonTag == "" || bsonTag == "-" || bsonTag == "_id" || bsonTag == "createdAt" || bsonTag == "updatedAt" {
			continue
		}

		if field.IsZero() {
			continue
		}
		result[bsonTag] = field.Interface()
	}
	return result, nil
}

package utility

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// P2Int64 chuyển string sang int64, trả về 0 nếu không parse được
func P2Int64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// String2ObjectID chuyển string hex sang primitive.ObjectID
func String2ObjectID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("ID không hợp lệ: %s", s)
	}
	return id, nil
}

// Strings2ObjectIDs chuyển danh sách string hex sang danh sách ObjectID.
// Phần tử không hợp lệ làm toàn bộ chuyển đổi thất bại.
func Strings2ObjectIDs(values []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, err := String2ObjectID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

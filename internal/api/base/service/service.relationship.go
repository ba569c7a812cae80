package basesvc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"meta_response/internal/common"
	"meta_response/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipDefinition định nghĩa một quan hệ từ struct tag.
// Tag dạng: relationship:"collection:signal_filters,field:signalId,message:..."
// Nhiều quan hệ cách nhau bởi '|'.
type RelationshipDefinition struct {
	CollectionName string
	FieldName      string
	ErrorMessage   string
	Optional       bool
	Cascade        bool
}

// ParseRelationshipTag phân tích struct tag relationship trên model
func ParseRelationshipTag(structType reflect.Type) []RelationshipDefinition {
	var relationships []RelationshipDefinition
	for i := 0; i < structType.NumField(); i++ {
		tag := structType.Field(i).Tag.Get("relationship")
		if tag == "" {
			continue
		}
		relationships = append(relationships, parseRelationshipTagValue(tag)...)
	}
	return relationships
}

func parseRelationshipTagValue(tagValue string) []RelationshipDefinition {
	var relationships []RelationshipDefinition
	for _, part := range strings.Split(tagValue, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rel := RelationshipDefinition{}
		for _, pair := range strings.Split(part, ",") {
			kv := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			switch key {
			case "collection":
				rel.CollectionName = value
			case "field":
				rel.FieldName = value
			case "message", "msg":
				rel.ErrorMessage = value
			case "optional":
				rel.Optional = value == "true" || value == "1"
			case "cascade":
				rel.Cascade = value == "true" || value == "1"
			}
		}
		if rel.CollectionName != "" && rel.FieldName != "" {
			if rel.ErrorMessage == "" {
				rel.ErrorMessage = fmt.Sprintf("Không thể xóa record vì có %%d record trong collection '%s' đang tham chiếu tới.", rel.CollectionName)
			}
			relationships = append(relationships, rel)
		}
	}
	return relationships
}

// ValidateRelationships kiểm tra các quan hệ được định nghĩa trong struct tag.
// Quan hệ cascade được bỏ qua (caller tự xóa dữ liệu con).
func ValidateRelationships(ctx context.Context, recordID primitive.ObjectID, structType reflect.Type) error {
	for _, rel := range ParseRelationshipTag(structType) {
		if rel.Cascade {
			continue
		}

		collection, exists := global.RegistryCollections.Get(rel.CollectionName)
		if !exists {
			if rel.Optional {
				continue
			}
			return common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Không tìm thấy collection '%s' để kiểm tra quan hệ", rel.CollectionName),
				common.StatusInternalServerError,
				nil,
			)
		}

		count, err := collection.CountDocuments(ctx, bson.M{rel.FieldName: recordID})
		if err != nil {
			return common.ConvertMongoError(err)
		}
		if count > 0 {
			return common.NewError(
				common.ErrCodeBusinessOperation,
				fmt.Sprintf(rel.ErrorMessage, count),
				common.StatusConflict,
				nil,
			)
		}
	}
	return nil
}

// ValidateRelationshipsFromValue kiểm tra quan hệ từ một giá trị struct
func ValidateRelationshipsFromValue(ctx context.Context, record interface{}, structType reflect.Type) error {
	recordID, ok := getIDFromModel(record)
	if !ok || recordID == primitive.NilObjectID {
		// Model không có _id (hoặc chưa persist) thì không có gì tham chiếu tới
		return nil
	}
	if structType == nil {
		val := reflect.ValueOf(record)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		structType = val.Type()
	}
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	return ValidateRelationships(ctx, recordID, structType)
}

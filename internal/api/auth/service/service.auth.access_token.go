// Package authsvc - service access token cho hệ thống nguồn.
package authsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	authdto "meta_response/internal/api/auth/dto"
	models "meta_response/internal/api/auth/models"
	basesvc "meta_response/internal/api/base/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/utility"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// AccessTokenService quản lý token tĩnh cho service-to-service ingest
type AccessTokenService struct {
	*basesvc.BaseServiceMongoImpl[models.AccessToken]
}

// NewAccessTokenService tạo mới AccessTokenService
func NewAccessTokenService() (*AccessTokenService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.AccessTokens)
	if !exist {
		return nil, fmt.Errorf("failed to get access_tokens collection: %v", common.ErrNotFound)
	}
	return &AccessTokenService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.AccessToken](collection),
	}, nil
}

// hashToken băm SHA-256 token plaintext để lưu/tra cứu
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create cấp token mới. Plaintext chỉ trả về một lần tại đây.
func (s *AccessTokenService) Create(ctx context.Context, input *authdto.AccessTokenCreateInput) (*models.AccessToken, string, error) {
	projectID, err := utility.String2ObjectID(input.ProjectID)
	if err != nil {
		return nil, "", common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, err)
	}

	plaintext := "mrt_" + uuid.NewString()
	record := models.AccessToken{
		ProjectID: projectID,
		Name:      input.Name,
		TokenHash: hashToken(plaintext),
		ExpiresAt: input.ExpiresAt,
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, record)
	if err != nil {
		return nil, "", err
	}
	return &created, plaintext, nil
}

// Validate tra cứu token plaintext, kiểm tra hạn và cập nhật lastUsed
func (s *AccessTokenService) Validate(ctx context.Context, plaintext string) (*models.AccessToken, error) {
	record, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"tokenHash": hashToken(plaintext)}, nil)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	if record.ExpiresAt > 0 && record.ExpiresAt < time.Now().UnixMilli() {
		return nil, common.ErrTokenExpired
	}

	// Best-effort, không chặn request nếu cập nhật lastUsed thất bại
	_, _ = s.BaseServiceMongoImpl.UpdateById(ctx, record.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{"lastUsed": time.Now().UnixMilli()},
	})

	return &record, nil
}

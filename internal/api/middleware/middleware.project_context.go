package middleware

import (
	"context"
	"sync"

	authsvc "meta_response/internal/api/auth/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HeaderActiveProject là header client dùng để chọn project context.
// CORS whitelist của server phải cho phép header này.
const HeaderActiveProject = "X-Active-Project-ID"

var (
	projectServiceInstance *authsvc.ProjectService
	projectServiceOnce     sync.Once
)

func getProjectService() *authsvc.ProjectService {
	projectServiceOnce.Do(func() {
		var err error
		projectServiceInstance, err = authsvc.NewProjectService()
		if err != nil {
			panic(err)
		}
	})
	return projectServiceInstance
}

// ProjectContextMiddleware resolve project đang làm việc từ header X-Active-Project-ID
// và lưu vào Locals "project_id". Base handler dùng giá trị này để scope mọi query.
// Không có header hợp lệ thì fallback về project enabled đầu tiên; không chặn request.
func ProjectContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		projIDStr := c.Get(HeaderActiveProject)
		if projIDStr != "" {
			projID, err := primitive.ObjectIDFromHex(projIDStr)
			if err == nil {
				if project, err := getProjectService().FindOneById(context.Background(), projID); err == nil {
					c.Locals("project_id", project.ID.Hex())
					return c.Next()
				}
			}
		}

		projects, err := getProjectService().FindEnabled(context.Background())
		if err == nil && len(projects) > 0 {
			c.Locals("project_id", projects[0].ID.Hex())
		}
		return c.Next()
	}
}

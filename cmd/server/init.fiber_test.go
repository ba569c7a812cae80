package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meta_response/internal/api/middleware"
)

// Preflight của browser chỉ cho qua header nằm trong CORS whitelist,
// nên header chọn project context phải luôn có mặt ở đó.
func TestCorsAllowsActiveProjectHeader(t *testing.T) {
	headers := corsAllowHeaders()

	assert.Contains(t, headers, middleware.HeaderActiveProject)
	assert.Contains(t, headers, "Authorization")
	assert.Contains(t, headers, "Content-Type")
}

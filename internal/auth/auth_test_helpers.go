package auth

import (
	"fmt"
	"testing"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/utilities"
)

// GetAccessToken issues an access token for a seeded test user. It lives
// outside _test.go files so controller test packages can reuse it.
func GetAccessToken(t *testing.T, db *database.DBinstanceStruct, username string, password string) (string, error) {
	t.Helper()

	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return "", fmt.Errorf("failed to find test user %q: %w", username, err)
	}

	if !utilities.CheckPasswordHash(password, user.Password) {
		return "", fmt.Errorf("wrong password for test user %q", username)
	}

	return GenerateToken(user.ID)
}

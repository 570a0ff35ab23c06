package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// LoginInput carries the admin credentials.
type LoginInput struct {
	Username string
	Password string
}

// AdminView is the admin representation returned to controllers.
type AdminView struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// LoginResult bundles the minted token with the authenticated admin.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     AdminView `json:"admin"`
}

func adminViewFromModel(admin *models.Admin) AdminView {
	return AdminView{
		ID:          admin.ID,
		Username:    admin.Username,
		Name:        admin.Name,
		LastLoginAt: admin.LastLoginAt,
	}
}

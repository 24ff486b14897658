package dbschema

import (
	"todo-server/services/todo-api/internal/domain/user"
	"todo-server/services/todo-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User represents the persisted user schema.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(320);not null;uniqueIndex:ux_users_email"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}

	return &User{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}

// EtoD converts the schema entity into a domain user.
func (e *User) EtoD() *user.User {
	if e == nil {
		return nil
	}

	return &user.User{
		ID:           e.ID,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

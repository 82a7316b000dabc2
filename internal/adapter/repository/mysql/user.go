package mysql

import (
	"context"
	"errors"

	"retailbank-backoffice/internal/domain/identity"

	"gorm.io/gorm"
)

// UserDirectory reads the users table owned by the identity service.
type UserDirectory struct{ db *gorm.DB }

func NewUserDirectory(db *gorm.DB) *UserDirectory { return &UserDirectory{db: db} }

func (d *UserDirectory) GetBasicInfo(ctx context.Context, ownerID string) (*identity.BasicInfo, error) {
	var u identity.User
	err := d.db.WithContext(ctx).Where("id = ?", ownerID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &identity.BasicInfo{Name: u.Name, Email: u.Email, IsActive: u.IsActive}, nil
}

// Package identity is the read-only view of users the engines need for
// notification content. It is never consulted for authorization.
package identity

import (
	"context"

	"retailbank-backoffice/internal/domain/fault"
)

var ErrNotFound = fault.New(fault.NotFound, "user not found")

type BasicInfo struct {
	Name     string
	Email    string
	IsActive bool
}

type Directory interface {
	GetBasicInfo(ctx context.Context, ownerID string) (*BasicInfo, error)
}

// User is the persisted row behind the directory; owned by the identity service.
type User struct {
	ID       string `gorm:"primaryKey;size:32;column:id"`
	Name     string `gorm:"size:128"`
	Email    string `gorm:"size:255"`
	IsActive bool
}

func (User) TableName() string { return "users" }

package mysql

import (
	"context"
	"errors"
	"testing"

	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/pkg/id"
)

func TestUserDirectory_GetBasicInfo(t *testing.T) {
	db := openTestDB(t)
	dir := NewUserDirectory(db)
	ctx := context.Background()

	uid := id.NewID32()
	if err := db.Create(&identity.User{ID: uid, Name: "Ana Pérez", Email: "ana@example.com", IsActive: true}).Error; err != nil {
		t.Fatal(err)
	}

	info, err := dir.GetBasicInfo(ctx, uid)
	if err != nil {
		t.Fatalf("GetBasicInfo: %v", err)
	}
	if info.Name != "Ana Pérez" || info.Email != "ana@example.com" || !info.IsActive {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := dir.GetBasicInfo(ctx, id.NewID32()); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected identity.ErrNotFound, got %v", err)
	}
}

// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"waysfood-api/config"
	"waysfood-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database that lives in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "waysfood.db") + "?_pragma=foreign_keys(1)"
	db, err := config.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FullName: name,
		Email:    name + "@waysfood.test",
		Password: "not-a-real-hash",
		Location: "[106.8,-6.2]",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateProduct(t testing.TB, db *gorm.DB, owner *models.User, title string, price int64) *models.Product {
	t.Helper()
	product := &models.Product{
		UserID: owner.ID,
		Title:  title,
		Price:  price,
		Image:  title + ".png",
	}
	require.NoError(t, db.Omit("User").Create(product).Error)
	return product
}

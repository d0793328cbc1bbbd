package database

import (
	"testing"

	"questlog/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewLogger()})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrate_OnePendingPerCatalogID(t *testing.T) {
	db := openTestDB(t)

	first := models.PendingGame{CatalogID: 5, Slug: "g5", Name: "G5", SubmittedBy: "kai", Status: models.StatusPending}
	require.NoError(t, db.Create(&first).Error)

	dup := models.PendingGame{CatalogID: 5, Slug: "g5", Name: "G5", SubmittedBy: "ana", Status: models.StatusPending}
	assert.Error(t, db.Create(&dup).Error)

	// Closed submissions do not count against the index.
	require.NoError(t, db.Model(&first).Update("status", models.StatusRejected).Error)
	assert.NoError(t, db.Create(&models.PendingGame{CatalogID: 5, Slug: "g5", Name: "G5", SubmittedBy: "ana", Status: models.StatusPending}).Error)
}

func TestMigrate_UniqueCatalogIDOnGames(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&models.Game{CatalogID: 7, Slug: "g7", Name: "G7"}).Error)
	assert.Error(t, db.Create(&models.Game{CatalogID: 7, Slug: "g7-copy", Name: "G7"}).Error)
}

func TestMigrate_ReviewRatingCheck(t *testing.T) {
	db := openTestDB(t)

	assert.NoError(t, db.Create(&models.Review{GameID: 1, Username: "kai", ReviewText: "ok", Rating: 5}).Error)
	assert.Error(t, db.Create(&models.Review{GameID: 1, Username: "kai", ReviewText: "bad", Rating: 6}).Error)
}

func TestMigrate_ContributorSet(t *testing.T) {
	db := openTestDB(t)

	game := models.Game{CatalogID: 9, Slug: "g9", Name: "G9"}
	require.NoError(t, db.Create(&game).Error)

	require.NoError(t, db.Create(&models.GameContributor{GameID: game.ID, Username: "kai"}).Error)
	assert.Error(t, db.Create(&models.GameContributor{GameID: game.ID, Username: "kai"}).Error)
}

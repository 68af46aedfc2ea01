package services

import (
	"testing"

	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.MigrateModels...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newBrokerApp(b *ConfirmationBroker) *fiber.App {
	app := fiber.New()
	app.Get("/api/delegations/pending", b.ListPending)
	app.Post("/api/delegations/:requestId/decision", b.PostDecision)
	return app
}

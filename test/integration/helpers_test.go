package integration

import (
	"log"
	"os"
	"testing"

	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openPostgres connects to DB_CONNECTION_STRING and migrates the schema.
// Tests skip when it is not set.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "failed to connect to DB")
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error)
	require.NoError(t, database.Migrate(db, model.All()...))
	return db
}

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/constants"
	appLogger "mallhub/internal/shared/logger"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := openMemoryDB(t)
	strategy := NewGooseStrategy(t.TempDir(), appLogger.NewNopLogger())

	require.NoError(t, strategy.Migrate(db))

	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	for _, table := range []string{
		constants.TablePaymentIntents, constants.TablePayments, constants.TableRefunds,
		constants.TablePaymentGatewayConfigs, constants.TableWebhookEventLogs, constants.TableOrders,
		constants.TableWebhookEndpoints, constants.TableWebhookDeliveries,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// the scripted schema must accept what the models write
	require.NoError(t, db.Create(&models.OrderModel{Tenant: "acme", OrderID: "ord_1", Total: 100, Currency: "USD", PaymentStatus: "unpaid"}).Error)

	require.NoError(t, strategy.Migrate(db), "re-running is a no-op")

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable(constants.TableOrders))
}

func TestGooseStrategy_CreateRejectsUnknownDialect(t *testing.T) {
	strategy := NewGooseStrategy(t.TempDir(), appLogger.NewNopLogger())
	assert.Error(t, strategy.Create("oracle", "add_things"))
}

func TestManager_PicksStrategyByEnvironment(t *testing.T) {
	assert.Equal(t, "gorm_auto_migrate", NewManager(constants.EnvDevelopment, "").GetStrategy().GetName())
	assert.Equal(t, "goose", NewManager(constants.EnvProduction, "").GetStrategy().GetName())
	assert.Equal(t, "goose", NewManager(constants.EnvTest, "").GetStrategy().GetName())
}

func TestManager_AutoMigrate(t *testing.T) {
	db := openMemoryDB(t)
	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy())

	require.NoError(t, m.Migrate(db, AutoMigrateModels()...))
	assert.True(t, db.Migrator().HasTable(constants.TableWebhookDeliveries))
	assert.Equal(t, "gorm_auto_migrate", m.GetStrategyInfo()["name"])
}

package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffdir/internal/config"
	"staffdir/internal/db"
	"staffdir/internal/model"
)

// Open connects the employee store selected by cfg.StoreDriver, drops it
// first when cfg.ResetDB is set, and makes sure the unique auth id index
// exists. The returned func releases the connection.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (EmployeeRepository, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoConnectTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.ResetDB {
			logger.Warn("RESET_DB=true detected, dropping employees collection")
			if err := database.Collection(EmployeeCollection).Drop(ctx); err != nil {
				logger.Warn("failed to drop collection (may not exist)", zap.Error(err))
			}
		}
		repo := NewMongoEmployeeRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return repo, database.Client().Disconnect, nil

	case config.StoreMySQL, config.StoreSQLite:
		var (
			gormDB *gorm.DB
			err    error
		)
		if cfg.StoreDriver == config.StoreMySQL {
			gormDB, err = db.NewMySQL(cfg.MySQLDSN, logger)
		} else {
			gormDB, err = db.NewSQLite(cfg.SQLitePath, logger)
		}
		if err != nil {
			return nil, nil, err
		}
		if cfg.ResetDB {
			logger.Warn("RESET_DB=true detected, dropping employees table")
			if err := gormDB.Migrator().DropTable(&model.Employee{}); err != nil {
				logger.Warn("failed to drop table (may not exist)", zap.Error(err))
			}
		}
		repo := NewGormEmployeeRepository(gormDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

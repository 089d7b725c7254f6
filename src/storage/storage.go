package storage

import (
	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
	"sentiment-aligner/src/logger"
	"sentiment-aligner/src/models"
)

// NewHeadlineDatabase picks the store implementation for the configured db_type.
func NewHeadlineDatabase(cfg *models.MStorageConfig, log *logger.Logger) (interfaces.IHeadlineDatabase, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresHeadlineStore(cfg, log), nil
	case "sqlite", "":
		return NewSQLiteHeadlineStore(cfg, log), nil
	default:
		return nil, helpers.NewValidationError("unsupported db_type %q", cfg.DBType)
	}
}

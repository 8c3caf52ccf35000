package artifact

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GormIndex persists artifact metadata in Postgres so multiple instances can
// share one output volume.
type GormIndex struct {
	db *gorm.DB
}

// TableName keeps the table name stable if the struct is ever renamed.
func (Record) TableName() string { return "artifacts" }

// NewGormIndex opens the DB and runs auto-migrations.
func NewGormIndex(dsn string) (*GormIndex, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormIndex{db: db}, nil
}

// Load reads every stored record.
func (x *GormIndex) Load() ([]Record, error) {
	var records []Record
	if err := x.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	return records, nil
}

// Save upserts the snapshot and removes rows that are no longer tracked.
func (x *GormIndex) Save(records []Record) error {
	return x.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "file_id"}},
				UpdateAll: true,
			}).Create(&records).Error; err != nil {
				return fmt.Errorf("upsert artifacts: %w", err)
			}
			if err := tx.Where("file_id NOT IN ?", ids).Delete(&Record{}).Error; err != nil {
				return fmt.Errorf("trim artifacts: %w", err)
			}
			return nil
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("clear artifacts: %w", err)
		}
		return nil
	})
}

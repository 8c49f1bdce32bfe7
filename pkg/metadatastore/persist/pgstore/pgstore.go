// Package pgstore implements a PostgreSQL-backed metadatastore.Persister
// using GORM, in the style of the coordinator's admin-facing control plane
// store: a typed Config with a DSN builder, and AutoMigrate in place of
// hand-written schema files.
//
// Like persist/badgerstore, pgstore carries the superset of durable state:
// folders in addition to the spec-mandated file registry and ACLs.
package pgstore

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/corefs/docfs/pkg/metadatastore"
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// ApplyDefaults fills in unset fields with conservative defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Store is a GORM-backed Persister and FolderPersister.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and runs AutoMigrate for the registry schema.
func Open(cfg Config) (*Store, error) {
	cfg.ApplyDefaults()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("pgstore: underlying db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("pgstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts every file record, its ACL entries and its checkpoints, in a
// single transaction.
func (s *Store) Save(files []*metadatastore.FileRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range files {
			m := toFileModel(rec)
			if err := tx.Save(m).Error; err != nil {
				return fmt.Errorf("pgstore: save file %q: %w", rec.Name, err)
			}
			if err := tx.Where("file_name = ?", rec.Name).Delete(&aclModel{}).Error; err != nil {
				return err
			}
			if len(m.ACL) > 0 {
				if err := tx.Create(&m.ACL).Error; err != nil {
					return fmt.Errorf("pgstore: save acl for %q: %w", rec.Name, err)
				}
			}
			if err := tx.Where("file_name = ?", rec.Name).Delete(&checkpointModel{}).Error; err != nil {
				return err
			}
			if len(m.Checkpoints) > 0 {
				if err := tx.Create(&m.Checkpoints).Error; err != nil {
					return fmt.Errorf("pgstore: save checkpoints for %q: %w", rec.Name, err)
				}
			}
		}
		return nil
	})
}

// Load returns every file record, with its ACL entries and checkpoints
// preloaded.
func (s *Store) Load() ([]*metadatastore.FileRecord, error) {
	var models []*fileModel
	if err := s.db.Preload("ACL").Preload("Checkpoints").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("pgstore: load files: %w", err)
	}
	records := make([]*metadatastore.FileRecord, len(models))
	for i, m := range models {
		records[i] = fromFileModel(m)
	}
	return records, nil
}

// SaveFolders upserts the folder tree.
func (s *Store) SaveFolders(folders []*metadatastore.FolderRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, f := range folders {
			if err := tx.Save(toFolderModel(f)).Error; err != nil {
				return fmt.Errorf("pgstore: save folder %q: %w", f.Path, err)
			}
		}
		return nil
	})
}

// LoadFolders returns every persisted folder.
func (s *Store) LoadFolders() ([]*metadatastore.FolderRecord, error) {
	var models []*folderModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("pgstore: load folders: %w", err)
	}
	folders := make([]*metadatastore.FolderRecord, len(models))
	for i, m := range models {
		folders[i] = fromFolderModel(m)
	}
	return folders, nil
}

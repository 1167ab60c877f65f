// Package gormstore provides a gorm credential store.
//
// Values live in a "credentials" table keyed by name. Any gorm dialect
// works; the CLI uses the sqlite driver.
package gormstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ credstore.Store = (*GORMStore)(nil)

// GORMStore is a gorm backed credential store.
type GORMStore struct {
	db *gorm.DB
}

// credential is a single stored value.
type credential struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string
	UpdatedAt time.Time
}

func (credential) TableName() string {
	return "credentials"
}

// New creates a GORMStore, creating the credentials table if needed.
func New(db *gorm.DB) (*GORMStore, error) {
	if err := db.AutoMigrate(&credential{}); err != nil {
		return nil, errors.Wrap(err, "gormstore New AutoMigrate")
	}
	return &GORMStore{db: db}, nil
}

// OpenSQLite opens (or creates) a sqlite database at path and returns a store over it.
func OpenSQLite(path string) (*GORMStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "gormstore OpenSQLite gorm.Open")
	}
	return New(db)
}

// Close closes the underlying database connection.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GORMStore) Get(ctx context.Context, name string) (string, bool, error) {
	c := &credential{}
	tx := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(c)
	if tx.Error != nil {
		return "", false, credstore.Wrap(credstore.OpGet, name, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return "", false, nil
	}
	return c.Value, true, nil
}

func (s *GORMStore) Set(ctx context.Context, name, value string) error {
	c := &credential{}
	tx := s.db.WithContext(ctx).
		Where(credential{Name: name}).
		Assign(credential{Value: value}).
		FirstOrCreate(c)
	return credstore.Wrap(credstore.OpSet, name, tx.Error)
}

func (s *GORMStore) Remove(ctx context.Context, name string) error {
	tx := s.db.WithContext(ctx).Delete(&credential{}, "name = ?", name)
	return credstore.Wrap(credstore.OpRemove, name, tx.Error)
}

package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repo is the postgres implementation of Storage. Conn is the writer,
// ConnReader a replica used by read-only endpoints.
type Repo struct {
	Conn       *gorm.DB
	ConnReader *gorm.DB
}

var _ Storage = (*Repo)(nil)

var connections []*gorm.DB

// NewRepo connects to the writer and reader databases of the cluster
func NewRepo(cfg config.DatabaseClusterConfig) (*Repo, error) {
	writer, err := open(cfg.Writer)
	if err != nil {
		return nil, err
	}
	reader := writer
	if cfg.Reader.Host != "" {
		if reader, err = open(cfg.Reader); err != nil {
			return nil, err
		}
	}
	return &Repo{Conn: writer, ConnReader: reader}, nil
}

func open(dbConf config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		dbConf.Host, dbConf.Port, dbConf.Username, dbConf.Password, dbConf.Name, dbConf.SSLmode, dbConf.ApplicationName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Error().Err(err).Str("section", "queries").Str("host", dbConf.Host).Msg("Unable to connect to database")
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(dbConf.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	connections = append(connections, db)
	return db, nil
}

// Close all opened database connections
func Close() {
	for _, db := range connections {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	connections = nil
}

func (repo *Repo) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	err := repo.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{Conn: tx, ConnReader: tx})
	})
	return mapError(err)
}

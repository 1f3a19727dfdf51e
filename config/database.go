package config

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var enumQueries = []string{
	`CREATE TYPE battle.tournament_sport AS ENUM ('GENERIC', 'PETANQUE')`,
	`CREATE TYPE battle.tournament_status AS ENUM ('DRAFT', 'PUBLISHED', 'ONGOING', 'DONE')`,
	`CREATE TYPE battle.match_status AS ENUM ('COMING', 'ONGOING', 'DONE')`,
	`CREATE TYPE battle.participant_role AS ENUM ('ADMIN', 'PLAYER', 'SPECTATOR')`,
	`CREATE TYPE battle.command_run_status AS ENUM ('CREATED', 'RUNNING', 'SUCCESS', 'FAILED')`,
}

func InitDB(host, port, user, password, dbName string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)
	logLevel := logger.Silent
	if Env().DebugQueries {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "battle.",
			SingularTable: false,
		},
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	x := db.Exec(`CREATE SCHEMA IF NOT EXISTS battle`)
	if x.Error != nil {
		return nil, x.Error
	}
	for _, query := range enumQueries {
		x := db.Exec(query)
		if x.Error != nil {
			if strings.Contains(x.Error.Error(), "already exists") {
				continue
			}
			return nil, x.Error
		}
	}
	return db, nil
}

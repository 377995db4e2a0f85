package db

import (
	"fmt"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/linkedcraft/internal/history"
	"github.com/suPer8Hu/linkedcraft/internal/profile"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&profile.Profile{}, &history.Record{})
}

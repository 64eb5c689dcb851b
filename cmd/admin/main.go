// Command admin 是运维 CLI：用户管理、日历表格检查
// 和批量导入。
package main

import (
	"errors"
	"log"
	"os"

	"berdoz-admin/internal/config"
	"berdoz-admin/internal/database"

	"gorm.io/gorm"
)

func main() {
	cli := &commandLine{out: os.Stdout}
	cli.openDB = func() (*gorm.DB, error) {
		cfg, err := config.Load(os.Getenv("BERDOZ_CONFIG"))
		if err != nil {
			return nil, err
		}
		cli.bcryptCost = cfg.Security.BcryptCost
		return openDB(cfg.Database)
	}
	if err := cli.run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := database.Init(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

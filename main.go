package main

import (
	"fmt"
	"os"

	"aurora/pkg/session"

	"github.com/gin-gonic/gin"
)

var (
	cfg      appConfig
	sessions *session.Manager
)

func main() {
	cfg = loadConfig()

	// Support a lightweight migrate command: `./aurora migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	sessions = session.NewManager(
		&dbCredentials{db: db},
		&gormTokenStore{db: db},
		cfg.accessContext(),
		cfg.refreshContext(),
	)

	r := gin.Default()

	setupRoutes(r)

	r.Run(cfg.ListenAddr)
}

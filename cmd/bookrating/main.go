package main

import (
	"flag"
	"os"

	"github.com/emzola/bookrating/config"
	_ "github.com/emzola/bookrating/docs"
	"github.com/emzola/bookrating/handler"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/repository"
	"github.com/emzola/bookrating/repository/postgres"
	"github.com/emzola/bookrating/service"
)

// app defines the application's layers.
type app struct {
	config  config.Config
	logger  *jsonlog.Logger
	handler *handler.Handler
}

// @title  Bookrating API
// @version 1.0.0
// @description Catalogue and rating API over works, editions, authors, tags and user ratings.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:4000
// @BasePath /
func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	configPath := flag.String("config", os.Getenv("BOOKRATING_CONFIG"), "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Decode(*configPath)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	level, err := jsonlog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	logger = jsonlog.New(os.Stdout, level)

	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			logger.PrintFatal(err, nil)
		}
		logger.PrintInfo("database schema migrated", nil)
	}

	repo := repository.New(db)
	svc := service.New(cfg, logger, repo)
	defer svc.Shutdown()

	app := &app{
		config:  cfg,
		logger:  logger,
		handler: handler.New(cfg, logger, svc),
	}
	if err := app.serve(); err != nil {
		logger.PrintFatal(err, nil)
	}
}

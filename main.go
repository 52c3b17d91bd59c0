package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"github.com/yeremiapane/camarero-fulfillment/config"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

func main() {
	app := &cli.App{
		Name:  "camarero",
		Usage: "order fulfillment engine for restaurant kitchens and bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "optional dotenv file loaded before the environment",
				EnvVars: []string{"CAMARERO_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and websocket server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create tables and apply constraint migrations, then exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.SetJWTSecret(cfg.JWTSecret)
	return cfg, nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if cfg.DBDriver == "mysql" {
		return database.ApplyConstraints(cfg.DBDSN)
	}
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}

	application, err := newApplication(cfg, db)
	if err != nil {
		return err
	}
	defer application.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.ErrorLogger.Errorf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("HTTP server shutdown: %v", err)
	}
	utils.InfoLogger.Println("HTTP server stopped")
	return nil
}

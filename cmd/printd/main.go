package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/farebox/printd/internal/api/handlers"
	"github.com/farebox/printd/internal/api/middleware"
	"github.com/farebox/printd/internal/config"
	"github.com/farebox/printd/internal/core"
	"github.com/farebox/printd/internal/store"
)

func main() {
	configPath := flag.String("config", "printd.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("create data directory: %v", err)
	}
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open settings store: %v", err)
	}
	defer st.Close()

	manager := core.NewManager()
	queue := core.NewQueue(manager, st, &core.QueueConfig{
		CopyDelay: cfg.Queue.CopyDelay,
		JobDelay:  cfg.Queue.JobDelay,
	})
	service := core.NewPrintService(manager, queue, st)

	auth, err := middleware.New(st, cfg.Server.AdminPassword)
	if err != nil {
		log.Fatalf("init auth: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.POST("/api/login", auth.Login)
	router.POST("/api/logout", auth.Logout)

	printer := handlers.NewPrinterHandler(service)
	api := router.Group("/api", auth.RequireAuth())
	{
		api.POST("/printer/connect", printer.Connect)
		api.POST("/printer/disconnect", printer.Disconnect)
		api.GET("/printer/status", printer.Status)
		api.POST("/printer/test", printer.TestConnection)
		api.POST("/printer/print", printer.Print)
		api.POST("/printer/test-page", printer.PrintTestPage)
		api.POST("/printer/data", printer.SendData)
		api.POST("/queue/clear", printer.ClearQueue)
		api.GET("/jobs/results", printer.JobResults)
		api.GET("/settings", printer.GetSettings)
		api.PUT("/settings", printer.SaveSettings)
	}
	router.GET("/ws/status", auth.RequireAuth(), printer.StatusStream)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("printd listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

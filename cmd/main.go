package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"template-api/internal/auth"
	"template-api/internal/config"
	"template-api/internal/handler"
	"template-api/internal/registry"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	reg, err := registry.New(cfg.TemplateBasePath)
	if err != nil {
		slog.Error("loading template registry", "path", cfg.TemplateBasePath, "error", err)
		os.Exit(1)
	}

	h := handler.New(cfg, reg, auth.NewManager(cfg))

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("starting server",
		"name", cfg.AppName,
		"version", cfg.AppVersion,
		"addr", addr,
		"templates", reg.Names())

	if err := http.ListenAndServe(addr, h.Routes()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

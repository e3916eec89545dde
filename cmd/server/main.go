package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/cuentaflix/cuentaflix/internal/app"
	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiRed   = "\033[31m"
)

func main() {
	printStartupBanner()

	// Configuración
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("el JWT secret es débil o sigue siendo el default; configure uno fuerte en producción")
		}
		if isWeakSecret(cfg.Vault.Key) {
			stdLog.Fatalf("la clave del vault es débil o sigue siendo el default; configure una fuerte en producción")
		}
	} else {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Printf("advertencia: el JWT secret es débil o sigue siendo el default")
		}
		if isWeakSecret(cfg.Vault.Key) {
			stdLog.Printf("advertencia: la clave del vault es débil o sigue siendo el default")
		}
	}

	// Base de datos
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		stdLog.Fatalf("no se pudo abrir la base de datos: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("la migración falló: %v", err)
	}

	// Operador por defecto
	defaultAdminUser := os.Getenv("CF_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("CF_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("advertencia: CF_DEFAULT_ADMIN_PASSWORD no definido, se omitió el alta del operador por defecto")
	} else if err := models.InitDefaultAdmin(db, defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("advertencia: no se pudo crear el operador por defecto: %v", err)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "modo de arranque: all (default), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Mode:    mode,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}, db); err != nil {
		stdLog.Fatalf("el servicio terminó con error: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiRed + " ██████╗██╗   ██╗███████╗███╗   ██╗████████╗ █████╗ ███████╗██╗     ██╗██╗  ██╗" + ansiReset)
	fmt.Println(ansiRed + "██╔════╝██║   ██║██╔════╝████╗  ██║╚══██╔══╝██╔══██╗██╔════╝██║     ██║╚██╗██╔╝" + ansiReset)
	fmt.Println(ansiRed + "██║     ██║   ██║█████╗  ██╔██╗ ██║   ██║   ███████║█████╗  ██║     ██║ ╚███╔╝ " + ansiReset)
	fmt.Println(ansiRed + "██║     ██║   ██║██╔══╝  ██║╚██╗██║   ██║   ██╔══██║██╔══╝  ██║     ██║ ██╔██╗ " + ansiReset)
	fmt.Println(ansiRed + "╚██████╗╚██████╔╝███████╗██║ ╚████║   ██║   ██║  ██║██║     ███████╗██║██╔╝ ██╗" + ansiReset)
	fmt.Println(ansiRed + " ╚═════╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝╚═╝  ╚═╝" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "CuentaFlix API" + ansiReset + ansiDim + " — inventario y suscripciones de cuentas compartidas" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}

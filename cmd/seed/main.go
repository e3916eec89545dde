package main

import (
	"fmt"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/vault"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

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

	v, err := vault.New(cfg.Vault.Key)
	if err != nil {
		stdLog.Fatalf("no se pudo inicializar el vault: %v", err)
	}

	// Planes de ejemplo
	planes := []models.Plan{
		{
			Nombre:        "Netflix 1 pantalla",
			Servicio:      "netflix",
			Costo:         models.NewMoneyFromDecimal(decimal.NewFromFloat(2.50)),
			PrecioVenta:   models.NewMoneyFromDecimal(decimal.NewFromFloat(4.99)),
			DuracionMeses: 1,
			Perfiles:      1,
			Activo:        true,
			Descripcion:   "Un perfil, HD",
		},
		{
			Nombre:        "Disney+ familiar",
			Servicio:      "disney",
			Costo:         models.NewMoneyFromDecimal(decimal.NewFromFloat(3.00)),
			PrecioVenta:   models.NewMoneyFromDecimal(decimal.NewFromFloat(5.99)),
			DuracionMeses: 1,
			Perfiles:      4,
			Activo:        true,
		},
		{
			Nombre:       "HBO Max 30 días",
			Servicio:     "hbo",
			Costo:        models.NewMoneyFromDecimal(decimal.NewFromFloat(2.00)),
			PrecioVenta:  models.NewMoneyFromDecimal(decimal.NewFromFloat(3.99)),
			DuracionDias: 30,
			Perfiles:     1,
			Activo:       true,
		},
	}
	for i := range planes {
		if err := db.Create(&planes[i]).Error; err != nil {
			stdLog.Fatalf("no se pudo crear el plan %q: %v", planes[i].Nombre, err)
		}
	}

	// Clientes de ejemplo
	clientes := []models.Cliente{
		{Nombre: "María Pérez", Telefono: "+5215512345678", Email: "maria@example.com"},
		{Nombre: "Juan Gómez", Telefono: "+5491123456789"},
		{Nombre: "Lucía Díaz", Email: "lucia@example.com"},
	}
	for i := range clientes {
		if err := db.Create(&clientes[i]).Error; err != nil {
			stdLog.Fatalf("no se pudo crear el cliente %q: %v", clientes[i].Nombre, err)
		}
	}

	// Inventario de demostración, cifrado con el vault
	total := 0
	for i := range planes {
		for j := 0; j < 3; j++ {
			correo, err := v.Encrypt(fmt.Sprintf("%s-demo-%d@cuentas.example.com", planes[i].Servicio, j+1))
			if err != nil {
				stdLog.Fatalf("no se pudo cifrar el correo: %v", err)
			}
			clave, err := v.Encrypt(fmt.Sprintf("demo-pass-%d-%d", i+1, j+1))
			if err != nil {
				stdLog.Fatalf("no se pudo cifrar la clave: %v", err)
			}
			credencial := models.Credencial{
				PlanID:        planes[i].ID,
				CorreoCifrado: correo,
				ClaveCifrada:  clave,
				Estado:        constants.CredencialDisponible,
				Perfil:        fmt.Sprintf("Perfil %d", j+1),
				Notas:         "credencial de demostración",
			}
			if err := db.Create(&credencial).Error; err != nil {
				stdLog.Fatalf("no se pudo crear la credencial: %v", err)
			}
			total++
		}
	}

	stdLog.Printf("seed completado: %d planes, %d clientes, %d credenciales", len(planes), len(clientes), total)
}

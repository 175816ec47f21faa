package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/darbarboots/billing-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cargar configuración: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatalf("crear instancia de migrate: %v", err)
	}
	defer m.Close()

	if len(os.Args) < 2 {
		fmt.Println("Uso: migrate [up|down|steps N|version]")
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("migraciones aplicadas")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("migraciones revertidas")

	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("steps requiere un número")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("argumento de steps inválido: %v", err)
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate steps: %v", err)
		}
		log.Printf("aplicados %d pasos de migración", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("obtener versión: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("comando desconocido: %s\n", cmd)
		fmt.Println("Uso: migrate [up|down|steps N|version]")
		os.Exit(1)
	}
}

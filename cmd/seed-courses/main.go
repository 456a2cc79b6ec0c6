package main

import (
	"context"
	"fmt"
	"time"

	"github.com/portalacademico/portal-backend/internal/config"
	"github.com/portalacademico/portal-backend/internal/database"
	"github.com/portalacademico/portal-backend/internal/logger"
	"github.com/portalacademico/portal-backend/internal/model"
)

// seedCourse is a catalog row inserted when missing. Reruns are safe:
// existing codes are left untouched.
type seedCourse struct {
	code     string
	name     string
	credits  int
	capacity int
	start    string
	end      string
}

var courses = []seedCourse{
	{"CS101", "Introducción a la Programación", 4, 30, "08:00", "10:00"},
	{"CS102", "Estructuras de Datos", 5, 25, "10:00", "12:00"},
	{"MAT101", "Cálculo I", 4, 35, "14:00", "16:00"},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Courses ===")

	for _, c := range courses {
		start, err := model.ParseTimeOfDay(c.start)
		if err != nil {
			log.Fatal().Err(err).Str("code", c.code).Msg("Invalid start time")
		}
		end, err := model.ParseTimeOfDay(c.end)
		if err != nil {
			log.Fatal().Err(err).Str("code", c.code).Msg("Invalid end time")
		}

		tag, err := pool.Exec(ctx,
			`INSERT INTO courses (code, name, credits, max_capacity, start_min, end_min, active)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			 ON CONFLICT (code) DO NOTHING`,
			c.code, c.name, c.credits, c.capacity, int(start), int(end),
		)
		if err != nil {
			log.Fatal().Err(err).Str("code", c.code).Msg("Failed to seed course")
		}

		if tag.RowsAffected() == 0 {
			fmt.Printf("Skipped %s (already exists)\n", c.code)
		} else {
			fmt.Printf("Created %s - %s (%s-%s, cap %d)\n", c.code, c.name, c.start, c.end, c.capacity)
		}
	}

	fmt.Println("Done.")
}

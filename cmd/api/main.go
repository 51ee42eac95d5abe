// cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/config"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/api/routes"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/assignment"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/auth"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/database"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/execution"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/lock"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/notify"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/scheduler"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/socket"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.SetSecret(cfg.JWT.Secret)

	client, db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	st := store.NewMongoStore(client, db)
	if err := st.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	ttl := time.Duration(cfg.Scheduler.LockTTLSeconds) * time.Second

	// The suggestion lock rides a JetStream KV bucket; without a NATS URL
	// the server falls back to the in-process lock (single instance only).
	var lockStore lock.Store
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Close()

		lockStore, err = lock.NewNATSLock(context.Background(), nc, cfg.NATS.LockBucket, ttl)
		if err != nil {
			log.Fatalf("Failed to open lock bucket: %v", err)
		}
	} else {
		log.Println("NATS URL not configured, using in-process suggestion lock")
		lockStore = lock.NewMemoryLock(ttl)
	}

	wsHub := socket.NewHub()
	notifier := notify.NewHubNotifier(wsHub)
	recorder := audit.NewRecorder(st)

	sched := scheduler.New(st, lockStore, recorder, ttl, cfg.Scheduler.AssignmentWeight)
	materializer := assignment.NewMaterializer(st, recorder, notifier)
	engine := execution.NewEngine(st, recorder, notifier)

	router := routes.SetupRouter(st, db, sched, materializer, engine, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

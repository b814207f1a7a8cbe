package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"finsight/api"
	"finsight/cache"
	"finsight/config"
	"finsight/database"
	"finsight/engine"
	"finsight/realtime"
)

// App represents the main application
type App struct {
	config    *config.Config
	db        *database.Database
	runDB     *database.RunDB
	redis     *cache.RedisClient
	repo      *database.FinanceRepository
	broker    *realtime.Broker
	wsHub     *realtime.WSHub
	eng       *engine.Engine
	refresher *AssessmentRefresher
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
		db:     nil, // Will be initialized in Start()
		redis:  nil, // Will be initialized in Start()
	}
}

// Start starts the application
func (a *App) Start() error {
	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	// Secondary raw connection for the append-only audit table
	runDB, err := database.NewRunDB(database.RunDBConfig{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		return fmt.Errorf("audit database connection failed: %w", err)
	}
	a.runDB = runDB

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)

	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 3. Initialize schema (AutoMigrate + audit table DDL)
	a.repo = database.NewFinanceRepository(a.db, a.runDB)
	if err := a.repo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 4. Realtime event fan-out
	a.broker = realtime.NewBroker()
	go a.broker.Run()
	a.wsHub = realtime.NewWSHub(a.broker)

	// 5. Feasibility engine
	a.eng = engine.New(a.repo, a.config.Engine, &eventFanout{broker: a.broker, redis: a.redis})
	log.Printf("✅ Feasibility engine ready (%s %s, %d paths, seed mode %s)",
		engine.EngineName, engine.EngineVersion,
		a.config.Engine.SimulationPaths, a.config.Engine.SeedMode)

	// 6. Background assessment refresher
	a.refresher = NewAssessmentRefresher(a.eng, a.repo,
		time.Duration(a.config.Engine.RefreshHours)*time.Hour)
	go a.refresher.Start()

	// 7. Start API Server
	cacheTTL := time.Duration(a.config.Engine.AssessmentCacheTTLMinutes) * time.Minute
	apiServer := api.NewServer(a.repo, a.eng, a.broker, a.wsHub, a.redis, cacheTTL)
	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 8. Wait for interrupt and perform graceful shutdown
	return a.gracefulShutdown()
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown() error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	shutdownComplete := make(chan struct{})
	go func() {
		if a.refresher != nil {
			fmt.Println("🔄 Stopping assessment refresher...")
			a.refresher.Stop()
		}
		if a.redis != nil {
			fmt.Println("🧠 Closing Redis connection...")
			if err := a.redis.Close(); err != nil {
				log.Printf("⚠️  Error closing Redis: %v", err)
			}
		}
		if a.runDB != nil {
			fmt.Println("🗄️  Closing audit database connection...")
			if err := a.runDB.Close(); err != nil {
				log.Printf("⚠️  Error closing audit database: %v", err)
			}
		}
		if a.db != nil {
			fmt.Println("🗄️  Closing database connection...")
			if err := a.db.Close(); err != nil {
				log.Printf("⚠️  Error closing database: %v", err)
			}
		}
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown complete")
	case <-time.After(10 * time.Second):
		fmt.Println("⚠️  Shutdown timed out, forcing exit")
	}

	return nil
}

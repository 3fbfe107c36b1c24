package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elenaruiz/attribution-engine/cmd"
	"github.com/elenaruiz/attribution-engine/internal/api"
	"github.com/elenaruiz/attribution-engine/internal/config"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/monitor"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"github.com/elenaruiz/attribution-engine/internal/services"
	"github.com/elenaruiz/attribution-engine/internal/workers"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API d'attribution et les processus de fond.",
	Long: `Cette commande initialise la base de données, configure les APIs,
démarre les workers asynchrones d'ingestion d'événements et le moniteur de revenu,
puis lance le serveur HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Échec du chargement de la configuration : %v", err)
		}

		// Initialiser la base de données
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		// Migration automatique des modèles
		if err := db.AutoMigrate(
			&models.AttributionEvent{},
			&models.ContentPerformance{},
			&models.AttributionModel{},
			&models.RevenueAttribution{},
		); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser les repositories
		eventRepo := repository.NewEventRepository(db)
		perfRepo := repository.NewPerformanceRepository(db)
		modelRepo := repository.NewModelRepository(db)
		attrRepo := repository.NewAttributionRepository(db)

		log.Println("Repositories initialisés.")

		// Initialiser les services métiers
		recorder := services.NewRecorderService(eventRepo, perfRepo)
		attributionService := services.NewAttributionService(
			eventRepo, modelRepo, attrRepo,
			cfg.Attribution.DefaultModel, cfg.Attribution.DefaultWindowDays,
		)
		reportService := services.NewReportService(attrRepo)

		log.Println("Services métiers initialisés.")

		// Initialiser le channel d'événements batch et lancer les workers.
		eventsChan := make(chan models.TrackedEvent, cfg.Analytics.BufferSize)
		api.EventsChannel = eventsChan
		workers.StartEventWorkers(cfg.Analytics.WorkerCount, eventsChan, recorder)

		log.Printf("Channel d'événements initialisé avec un buffer de %d. %d worker(s) démarré(s).",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		// Initialiser et lancer le moniteur de revenu.
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		revenueMonitor := monitor.NewRevenueMonitor(perfRepo, monitorInterval)
		go revenueMonitor.Start()
		log.Printf("Moniteur de revenu démarré avec un intervalle de %v.", monitorInterval)

		// Configurer le routeur Gin et les handlers API.
		router := gin.Default()
		api.SetupRoutes(router, recorder, attributionService, reportService, cfg.Analytics.BufferSize)

		log.Println("Routes API configurées.")

		// Créer le serveur HTTP Gin
		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur Gin dans une goroutine pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Gérer l'arrêt propre du serveur (graceful shutdown).
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		// Laisser le temps aux workers de vider le channel avant de quitter.
		close(eventsChan)
		log.Println("Arrêt en cours... Donnez un peu de temps aux workers pour finir.")
		time.Sleep(5 * time.Second)

		log.Println("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}

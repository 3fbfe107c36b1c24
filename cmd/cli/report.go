package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/elenaruiz/attribution-engine/cmd"
	"github.com/elenaruiz/attribution-engine/internal/config"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"github.com/elenaruiz/attribution-engine/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	reportFromFlag        string
	reportToFlag          string
	reportContentTypeFlag string
)

// ReportCmd représente la commande 'report'
var ReportCmd = &cobra.Command{
	Use:   "report [account-id]",
	Short: "Affiche le rapport d'attribution de revenu d'un compte.",
	Long:  `Agrège les lignes d'attribution du compte sur la plage de dates donnée.`,
	Args:  cobra.ExactArgs(1),
	Run:   runReport,
}

func init() {
	ReportCmd.Flags().StringVar(&reportFromFlag, "from", "", "Start date (YYYY-MM-DD)")
	ReportCmd.Flags().StringVar(&reportToFlag, "to", "", "End date (YYYY-MM-DD)")
	ReportCmd.Flags().StringVar(&reportContentTypeFlag, "content-type", "", "Filter on one content type (quote, asset, product)")

	cmd.RootCmd.AddCommand(ReportCmd)
}

// runReport exécute la logique pour la commande report
func runReport(cobraCmd *cobra.Command, args []string) {
	accountID := args[0]

	var filter repository.AttributionFilter
	if reportFromFlag != "" {
		from, err := time.Parse("2006-01-02", reportFromFlag)
		if err != nil {
			fmt.Printf("Error: Invalid --from date: %v\n", err)
			os.Exit(1)
		}
		filter.StartDate = &from
	}
	if reportToFlag != "" {
		to, err := time.Parse("2006-01-02", reportToFlag)
		if err != nil {
			fmt.Printf("Error: Invalid --to date: %v\n", err)
			os.Exit(1)
		}
		filter.EndDate = &to
	}
	filter.ContentType = reportContentTypeFlag

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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
	}
	defer sqlDB.Close()

	attrRepo := repository.NewAttributionRepository(db)
	reportService := services.NewReportService(attrRepo)

	report, err := reportService.Report(accountID, filter)
	if err != nil {
		fmt.Printf("Error building report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rapport d'attribution pour le compte : %s\n", accountID)
	fmt.Printf("Revenu total attribué : %.2f\n", report.TotalRevenue)
	fmt.Printf("Commandes distinctes : %d\n", report.TotalOrders)
	if len(report.TopContent) == 0 {
		fmt.Println("Aucun contenu attribué sur la période.")
		return
	}
	fmt.Println("Top contenus :")
	for i, content := range report.TopContent {
		fmt.Printf("  %2d. %-8s %-16s revenu=%.2f commandes=%d\n",
			i+1, content.ContentType, content.ContentID, content.AttributedRevenue, content.OrderCount)
	}
}

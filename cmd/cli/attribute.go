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
	attributeAccountFlag  string
	attributeTotalFlag    float64
	attributeDateFlag     string
	attributeCustomerFlag string
)

// AttributeCmd représente la commande 'attribute'
var AttributeCmd = &cobra.Command{
	Use:   "attribute [order-id]",
	Short: "Calcule l'attribution de revenu pour une commande.",
	Long: `Cette commande répartit le montant d'une commande sur les touchpoints
qui l'ont précédée dans la fenêtre d'attribution du compte, puis affiche les
lignes d'attribution créées.

Exemple:
  attribution attribute o-1042 --account=acct1 --total=249.90 --date=2026-08-15`,
	Args: cobra.ExactArgs(1),
	Run: func(cobraCmd *cobra.Command, args []string) {
		orderID := args[0]

		if attributeAccountFlag == "" {
			fmt.Println("Error: --account flag is required")
			os.Exit(1)
		}

		orderDate := time.Now()
		if attributeDateFlag != "" {
			parsed, err := time.Parse("2006-01-02", attributeDateFlag)
			if err != nil {
				fmt.Printf("Error: Invalid date format (expected YYYY-MM-DD): %v\n", err)
				os.Exit(1)
			}
			orderDate = parsed
		}

		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
		}
		defer sqlDB.Close()

		// Initialiser les repositories et services nécessaires
		eventRepo := repository.NewEventRepository(db)
		modelRepo := repository.NewModelRepository(db)
		attrRepo := repository.NewAttributionRepository(db)
		attributionService := services.NewAttributionService(
			eventRepo, modelRepo, attrRepo,
			cfg.Attribution.DefaultModel, cfg.Attribution.DefaultWindowDays,
		)

		attributions, err := attributionService.Attribute(
			attributeAccountFlag, orderID, attributeTotalFlag, orderDate, attributeCustomerFlag,
		)
		if err != nil {
			log.Fatalf("Failed to attribute order: %v", err)
		}

		if len(attributions) == 0 {
			fmt.Printf("Aucun touchpoint éligible pour la commande %s : aucune ligne créée.\n", orderID)
			return
		}

		fmt.Printf("Attribution calculée pour la commande %s (%s) :\n", orderID, attributions[0].ModelType)
		for _, row := range attributions {
			fmt.Printf("  %-8s %-12s poids=%.4f revenu=%.2f (touchpoint %s du %s)\n",
				row.ContentType, row.ContentID, row.AttributionWeight, row.AttributedRevenue,
				row.TouchpointType, row.TouchpointAt.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	AttributeCmd.Flags().StringVar(&attributeAccountFlag, "account", "", "Account the order belongs to")
	AttributeCmd.Flags().Float64Var(&attributeTotalFlag, "total", 0, "Order total to split across touchpoints")
	AttributeCmd.Flags().StringVar(&attributeDateFlag, "date", "", "Order date (YYYY-MM-DD, defaults to today)")
	AttributeCmd.Flags().StringVar(&attributeCustomerFlag, "customer", "", "Restrict touchpoints to this customer")

	AttributeCmd.MarkFlagRequired("account")
	AttributeCmd.MarkFlagRequired("total")

	cmd.RootCmd.AddCommand(AttributeCmd)
}

package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/elenaruiz/attribution-engine/cmd"
	"github.com/elenaruiz/attribution-engine/internal/config"
	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	setModelAccountFlag string
	setModelTypeFlag    string
	setModelWindowFlag  int
	setModelNameFlag    string
)

// validModelTypes lists the weighting models an account can configure.
var validModelTypes = map[string]bool{
	models.ModelFirstTouch:    true,
	models.ModelLastTouch:     true,
	models.ModelLinear:        true,
	models.ModelTimeDecay:     true,
	models.ModelPositionBased: true,
}

// SetModelCmd représente la commande 'set-model'
var SetModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Configure le modèle d'attribution par défaut d'un compte.",
	Long: `Enregistre un modèle d'attribution comme défaut du compte. Tout
défaut précédent est remplacé : il y a au plus un modèle par défaut par compte.

Exemple:
  attribution set-model --account=acct1 --model=time_decay --window=14`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if setModelAccountFlag == "" {
			fmt.Println("Error: --account flag is required")
			os.Exit(1)
		}
		if !validModelTypes[setModelTypeFlag] {
			fmt.Printf("Error: %v: %q\n", apperrors.ErrInvalidModelType, setModelTypeFlag)
			os.Exit(1)
		}
		if setModelWindowFlag <= 0 {
			fmt.Println("Error: --window must be a positive number of days")
			os.Exit(1)
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

		modelRepo := repository.NewModelRepository(db)

		name := setModelNameFlag
		if name == "" {
			name = setModelTypeFlag
		}
		model := &models.AttributionModel{
			AccountID:  setModelAccountFlag,
			Name:       name,
			ModelType:  setModelTypeFlag,
			WindowDays: setModelWindowFlag,
		}
		if err := modelRepo.SetDefaultModel(model); err != nil {
			log.Fatalf("Failed to set default model: %v", err)
		}

		fmt.Printf("Modèle par défaut du compte %s : %s (fenêtre de %d jours)\n",
			setModelAccountFlag, model.ModelType, model.WindowDays)
	},
}

func init() {
	SetModelCmd.Flags().StringVar(&setModelAccountFlag, "account", "", "Account to configure")
	SetModelCmd.Flags().StringVar(&setModelTypeFlag, "model", models.ModelLastTouch, "Model type (first_touch, last_touch, linear, time_decay, position_based)")
	SetModelCmd.Flags().IntVar(&setModelWindowFlag, "window", models.DefaultWindowDays, "Lookback window in days")
	SetModelCmd.Flags().StringVar(&setModelNameFlag, "name", "", "Display name for the model")

	SetModelCmd.MarkFlagRequired("account")

	cmd.RootCmd.AddCommand(SetModelCmd)
}

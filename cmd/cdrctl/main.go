package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"cdr-backend-V1.0/internal/cache"
	"cdr-backend-V1.0/internal/config"
	"cdr-backend-V1.0/internal/db"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
	"cdr-backend-V1.0/internal/service"
)

// cdrctl is the operator CLI: it owns the catalog import path and admin
// provisioning, the two writes the API never exposes.
func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "cdrctl",
		Short: "Operator tooling for the CDR assessment backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db.InitDBFromConfig(cfg)
			return db.GetDB().AutoMigrate(
				&model.User{},
				&model.Domain{},
				&model.Question{},
				&model.Test{},
				&model.Answer{},
				&model.Report{},
			)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.xml", "path to the XML config file")

	root.AddCommand(newImportQuestionsCommand())
	root.AddCommand(newSeedQuestionsCommand())
	root.AddCommand(newCreateAdminCommand())
	return root
}

func newImportQuestionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-questions <file.json>",
		Short: "Replace the question catalog from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var domains []model.Domain
			if err := json.Unmarshal(data, &domains); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			if err := repository.NewCatalogRepository().ReplaceCatalog(domains); err != nil {
				return err
			}
			invalidateCatalogCache()
			fmt.Printf("Imported %d domains\n", len(domains))
			return nil
		},
	}
}

func newSeedQuestionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-questions",
		Short: "Load the built-in CDR question catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repository.NewCatalogRepository().ReplaceCatalog(defaultCatalog()); err != nil {
				return err
			}
			invalidateCatalogCache()
			fmt.Printf("Seeded %d domains\n", len(defaultCatalog()))
			return nil
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create (or promote) an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			userRepo := repository.NewUserRepository()

			existing, err := userRepo.GetUserByEmail(email)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := userRepo.PromoteToAdmin(email); err != nil {
					return err
				}
				fmt.Printf("Promoted %s to admin\n", email)
				return nil
			}

			user := model.User{Name: name, Email: email, IsAdmin: true}
			if err := service.NewAuthService(userRepo).Register(&user, password); err != nil {
				return err
			}
			fmt.Printf("Created admin %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "admin display name")
	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (required for a new account)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// invalidateCatalogCache drops the cached catalog after an import so the
// API serves the new questions immediately.
func invalidateCatalogCache() {
	cfg := config.GetConfig()
	if cfg == nil || !cfg.Cache.Enabled {
		return
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.NewCatalogCache(client, 0).Invalidate(ctx); err != nil {
		fmt.Printf("Warning: failed to invalidate catalog cache: %v\n", err)
	}
}

func defaultCatalog() []model.Domain {
	return []model.Domain{
		{
			Name:        "Memory",
			Description: "Recall of recent events, conversations, and appointments.",
			Questions: []model.Question{
				{QID: "mem-1", Text: "Forgets conversations or events that happened within the last few days"},
				{QID: "mem-2", Text: "Repeats the same question or story within a short period"},
				{QID: "mem-3", Text: "Misplaces everyday items such as keys, glasses, or a wallet"},
				{QID: "mem-4", Text: "Needs reminders for appointments or medication"},
				{QID: "mem-5", Text: "Struggles to learn or retain new information"},
			},
		},
		{
			Name:        "Orientation",
			Description: "Awareness of time, place, and familiar people.",
			Questions: []model.Question{
				{QID: "ori-1", Text: "Loses track of the day of the week or the date"},
				{QID: "ori-2", Text: "Becomes confused about the current time of day"},
				{QID: "ori-3", Text: "Gets lost in familiar surroundings"},
				{QID: "ori-4", Text: "Has trouble recognizing familiar people"},
				{QID: "ori-5", Text: "Is unsure of their current location when away from home"},
			},
		},
		{
			Name:        "Judgment and Problem Solving",
			Description: "Handling everyday decisions, finances, and unexpected situations.",
			Questions: []model.Question{
				{QID: "jps-1", Text: "Shows poor judgment with money or purchases"},
				{QID: "jps-2", Text: "Struggles to plan multi-step activities such as preparing a meal"},
				{QID: "jps-3", Text: "Has difficulty handling small emergencies at home"},
				{QID: "jps-4", Text: "Makes decisions that seem out of character or unsafe"},
				{QID: "jps-5", Text: "Cannot follow instructions with several steps"},
			},
		},
		{
			Name:        "Community Affairs",
			Description: "Participation in activities outside the home.",
			Questions: []model.Question{
				{QID: "com-1", Text: "Has withdrawn from social activities or clubs they used to enjoy"},
				{QID: "com-2", Text: "Needs help when shopping or running errands"},
				{QID: "com-3", Text: "Struggles to manage transport or travel independently"},
				{QID: "com-4", Text: "Has difficulty keeping up with conversations in a group"},
				{QID: "com-5", Text: "Depends on others for banking or official paperwork"},
			},
		},
		{
			Name:        "Home and Hobbies",
			Description: "Everyday tasks and pastimes within the home.",
			Questions: []model.Question{
				{QID: "hob-1", Text: "Has abandoned hobbies they used to keep up regularly"},
				{QID: "hob-2", Text: "Needs prompting to start or finish household chores"},
				{QID: "hob-3", Text: "Struggles to operate familiar household appliances"},
				{QID: "hob-4", Text: "Leaves tasks such as cooking unattended or unfinished"},
				{QID: "hob-5", Text: "Shows less interest in reading, games, or television"},
			},
		},
		{
			Name:        "Personal Care",
			Description: "Independence in dressing, hygiene, and eating.",
			Questions: []model.Question{
				{QID: "per-1", Text: "Needs reminders or help with washing and grooming"},
				{QID: "per-2", Text: "Wears clothing inappropriate for the weather or occasion"},
				{QID: "per-3", Text: "Needs assistance with dressing"},
				{QID: "per-4", Text: "Has changed eating habits or needs help at mealtimes"},
				{QID: "per-5", Text: "Neglects personal hygiene without prompting"},
			},
		},
	}
}

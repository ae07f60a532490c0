package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tagsmith/internal/app"
	"tagsmith/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tagsmith",
	Short: "Tagsmith CLI",
	Long: `Tagsmith assigns topic tags to your documents using a hosted language
model. Register documents, let the model pick tags from your catalog (or
propose new ones), and keep the assignments in a local database.`,
	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand: print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "version", "completion":
			return nil
		}

		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context.
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Custom context key type to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database and index connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Checking primary store...")
		if err := appInstance.DocumentStore.Ping(ctx); err != nil {
			return fmt.Errorf("primary store ping failed: %w", err)
		}
		fmt.Println("Primary store OK.")

		if appInstance.Config.Index.Enabled {
			fmt.Println("Checking tag index...")
			if err := appInstance.TagIndex.Ping(ctx); err != nil {
				return fmt.Errorf("tag index ping failed: %w", err)
			}
			fmt.Println("Tag index OK.")
		} else {
			fmt.Println("Tag index disabled.")
		}

		fmt.Printf("LLM provider: %s (model %s, tool calls: %v)\n",
			appInstance.Completer.Provider(), appInstance.Completer.Model(),
			appInstance.Completer.SupportsToolCalls())
		return nil
	},
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	contentDir string
	feedURL    string
	dryRun     bool
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "letterboxd-sync [username]",
	Short: "Sync Letterboxd diary ratings into markdown content files",
	Long: `Fetches a Letterboxd user's diary RSS feed and merges ratings into a
directory of markdown records with YAML frontmatter. Recognized fields
(rating, film_id, link) are updated; everything the user wrote is preserved.
Intended to run as a pre-build step.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := ensureConfigExists(); err != nil {
			log.Fatalf("Config setup failed: %v", err)
		}

		settings, err := loadSettings(settingsPath())
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}

		// Flags and the positional username override the settings file
		if len(args) > 0 {
			settings.Username = args[0]
		}
		if contentDir != "" {
			settings.ContentDir = contentDir
		}
		if feedURL != "" {
			settings.FeedURL = feedURL
		}
		if settings.Username == "" {
			log.Fatal("Username required: pass it as an argument or set it in settings.yaml")
		}

		if debugMode {
			SetDebugMode(true)
		}

		syncer := NewSyncer(settings, dryRun)
		report, err := syncer.Run()
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

		log.Printf("Done: %s", report.Summary())
	},
}

func init() {
	rootCmd.Flags().StringVar(&contentDir, "content-dir", "", "Directory of markdown records (overrides settings)")
	rootCmd.Flags().StringVar(&feedURL, "feed-url", "", "Feed URL template with one %s for the username")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing files")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

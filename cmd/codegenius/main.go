package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"codegenius/internal/config"
	"codegenius/internal/discovery"
	"codegenius/internal/knowledge"
	"codegenius/internal/pipeline"
	"codegenius/internal/server"
	"codegenius/internal/stats"
	"codegenius/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "codegenius",
		Short: "Code context graphs and auto-generated documentation for repositories",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	updateCmd.Flags().StringVar(&baseRef, "base", "HEAD", "Git ref to diff against")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func initSummarizer(ctx context.Context, cfg *config.Config) knowledge.Summarizer {
	summarizer, err := knowledge.NewSummarizer(ctx, knowledge.Options{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}
	return summarizer
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a local repository and print its graph and statistics",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		cfg := loadConfig()
		p := pipeline.New(cfg, nil, nil)

		fmt.Printf("📂 Analyzing directory: %s\n", absPath)
		start := time.Now()
		res, err := p.Analyze(context.Background(), absPath)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}

		snap := res.Graph.Serialize()
		report := stats.Aggregate(snap)
		fmt.Printf("✅ Analyzed %d files in %v. Symbols=%d Edges=%d\n",
			res.FilesAnalyzed, time.Since(start), report.TotalSymbols, report.TotalEdges)

		out := struct {
			Graph     any              `json:"graph"`
			Stats     stats.Report     `json:"stats"`
			Discovery discovery.Report `json:"discovery"`
		}{snap, report, res.Discovery}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <repo-url>",
	Short: "Clone a repository and generate its documentation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		p := pipeline.New(cfg, store, initSummarizer(ctx, cfg))

		fmt.Printf("🚀 Generating documentation for %s\n", args[0])
		result, err := p.Generate(ctx, args[0])
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		fmt.Printf("✅ Done in %v. Symbols=%d\n", result.Duration.Round(time.Millisecond), result.Stats.TotalSymbols)
		fmt.Printf("📄 Documentation: %s\n", result.DocsPath)
	},
}

var baseRef string

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Re-analyze files changed since a git ref on top of the stored graph",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		cfg := loadConfig()
		ctx := context.Background()

		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		p := pipeline.New(cfg, store, nil)
		result, err := p.Update(ctx, absPath, baseRef)
		if err != nil {
			log.Fatalf("Update failed: %v", err)
		}
		if result.Changed == 0 {
			fmt.Println("✅ No changes detected.")
			return
		}

		fmt.Printf("📝 Detected %d changed files, re-analyzed %d.\n", result.Changed, result.Reanalyzed)
		fmt.Printf("🎯 Impact: %d symbols directly affected, %d callers.\n",
			len(result.Impact.DirectlyAffected), len(result.Impact.IndirectlyAffected))
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		p := pipeline.New(cfg, store, initSummarizer(ctx, cfg))
		s := server.New(p, store)

		fmt.Printf("🌐 Listening on %s\n", cfg.Server.Addr)
		if err := s.Run(cfg.Server.Addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	},
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CorruptResonant/gitsec-scanner/core"
	"github.com/CorruptResonant/gitsec-scanner/detectors"
	"github.com/CorruptResonant/gitsec-scanner/explain"
	"github.com/CorruptResonant/gitsec-scanner/processors"
	"github.com/CorruptResonant/gitsec-scanner/reporters"
	"github.com/CorruptResonant/gitsec-scanner/repositories"
	"github.com/CorruptResonant/gitsec-scanner/scanners"
	"github.com/CorruptResonant/gitsec-scanner/server"
	"github.com/CorruptResonant/gitsec-scanner/trust"
	"github.com/CorruptResonant/gitsec-scanner/utils"
)

// Cli represents the command-line interface
type Cli struct {
	reportFormat   string
	repositoryKind string
	queriesPath    string
	configPath     string
	cutoff         string
	port           int
}

// Execute sets up and runs the root command
func (cli *Cli) Execute() error {
	rootCmd := &cobra.Command{
		Use:   "gitsec-scanner",
		Short: "gitsec-scanner scans Python code for security anti-patterns.",
	}

	rootCmd.AddCommand(cli.createScanCommand())
	rootCmd.AddCommand(cli.createServeCommand())

	return rootCmd.Execute()
}

// createScanCommand creates the 'scan' subcommand with its flags and subcommands
func (cli *Cli) createScanCommand() *cobra.Command {

	scanCmd := &cobra.Command{
		Use:     "scan",
		Short:   "Scan files, repositories or directories for security issues.",
		Version: Version,
	}

	scanCmd.PersistentFlags().StringVar(&cli.reportFormat, "report", "json", "Report format (supported: json, xlsx)")
	scanCmd.PersistentFlags().StringVar(&cli.repositoryKind, "repository", "file", "Finding storage backend (supported: file, sqlite)")
	scanCmd.PersistentFlags().StringVar(&cli.queriesPath, "queries", "queries.yaml", "Path to the summary queries file")
	scanCmd.PersistentFlags().StringVar(&cli.cutoff, "cutoff", "", "Cutoff date for commit activity metrics (e.g. '3 months ago')")

	scanFileCmd := &cobra.Command{
		Use:   "file <PATH>",
		Short: "Scan a single Python file and print the findings as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read '%s': %w", args[0], err)
			}

			findings := detectors.Scan(string(content), args[0])
			if findings == nil {
				findings = []core.Finding{}
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(findings)
		},
	}

	scanRepoCmd := &cobra.Command{
		Use:   "repo <REPO_URL>",
		Short: "Clone and scan a single Git repository for security issues.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, err := cli.createReporter(cli.reportFormat)
			if err != nil {
				return err
			}
			findingRepository, err := cli.createFindingRepository()
			if err != nil {
				return err
			}
			defer findingRepository.Close()
			scanner := scanners.NewRepoScanner(
				reporter,
				processors.InitializeProcessors(),
				findingRepository,
				trust.NewScorer(utils.NewGithubApiClient(), nil),
				cli.cutoff)
			return scanner.Scan(args[0], cli.reportFormat)
		},
	}

	scanDirCmd := &cobra.Command{
		Use:   "dir [DIRECTORY]",
		Short: "Scan all top-level directories in the specified directory (defaults to CWD).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var directory string
			if len(args) == 0 {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current working directory: %w", err)
				}
				directory = cwd
			} else {
				directory = args[0]
			}

			info, err := os.Stat(directory)
			if err != nil {
				return fmt.Errorf("error accessing directory '%s': %w", directory, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("provided path '%s' is not a directory", directory)
			}

			reporter, err := cli.createReporter(cli.reportFormat)
			if err != nil {
				return err
			}
			findingRepository, err := cli.createFindingRepository()
			if err != nil {
				return err
			}
			defer findingRepository.Close()
			directoryScanner := scanners.NewDirectoryScanner(
				reporter,
				processors.InitializeProcessors(),
				findingRepository)

			return directoryScanner.Scan(directory, cli.reportFormat)
		},
	}

	scanCmd.AddCommand(scanFileCmd)
	scanCmd.AddCommand(scanRepoCmd)
	scanCmd.AddCommand(scanDirCmd)
	return scanCmd
}

func (cli *Cli) createServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cli.configPath)
			if err != nil {
				return err
			}
			if cli.port != 0 {
				cfg.Port = cli.port
			}

			var cache *trust.Cache
			if cfg.TrustCache != "" {
				cache, err = trust.OpenCache(cfg.TrustCache)
				if err != nil {
					return err
				}
				defer cache.Close()
			}

			explainer := explain.NewClient(os.Getenv("GROQ_API_KEY"))
			explainer.Model = cfg.GroqModel

			srv := server.New(
				processors.InitializeProcessors(),
				cfg.ExcludeGlobs,
				cfg.MaxFileSize,
				cfg.CloneBaseDir,
				trust.NewScorer(utils.NewGithubApiClient(), cache),
				explainer)

			return srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Port))
		},
	}

	serveCmd.Flags().StringVar(&cli.configPath, "config", "gitsec.toml", "Path to the service config file")
	serveCmd.Flags().IntVar(&cli.port, "port", 0, "Override the configured listen port")
	return serveCmd
}

func (cli *Cli) createFindingRepository() (core.FindingRepository, error) {
	if !utils.Contains([]string{"file", "sqlite"}, cli.repositoryKind) {
		return nil, fmt.Errorf("unknown repository kind: %s", cli.repositoryKind)
	}
	if cli.repositoryKind == "sqlite" {
		return repositories.NewSqliteFindingRepository("scan_findings.db")
	}
	return repositories.NewFileBasedFindingRepository(), nil
}

func (cli *Cli) createReporter(reportFormat string) (core.Reporter, error) {
	if reportFormat == "xlsx" {
		return reporters.XlsxSummaryReporter{}, nil
	}
	if reportFormat == "json" {
		queries, err := cli.loadQueries()
		if err != nil {
			return nil, err
		}
		return reporters.JsonReporter{
			Queries:          queries,
			ArtifactPrefix:   "gitsec",
			SqliteDBFilename: "findings.db",
		}, nil
	}

	return nil, fmt.Errorf("unknown report format: %s", reportFormat)
}

func (cli *Cli) loadQueries() (core.SqlQueries, error) {
	var queries core.SqlQueries

	data, err := os.ReadFile(cli.queriesPath)
	if os.IsNotExist(err) {
		return queries, nil
	}
	if err != nil {
		return queries, fmt.Errorf("failed to read queries file '%s': %w", cli.queriesPath, err)
	}

	if err := yaml.Unmarshal(data, &queries); err != nil {
		return queries, fmt.Errorf("failed to parse queries file '%s': %w", cli.queriesPath, err)
	}
	return queries, nil
}

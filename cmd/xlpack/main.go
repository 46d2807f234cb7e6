// Package main provides the CLI entry point for xlpack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlpack-go/internal/catalog"
	"github.com/ukaji3/xlpack-go/internal/config"
	"github.com/ukaji3/xlpack-go/internal/logging"
	"github.com/ukaji3/xlpack-go/internal/metrics"
	"github.com/ukaji3/xlpack-go/internal/server"
	"github.com/ukaji3/xlpack-go/internal/service"
	"github.com/ukaji3/xlpack-go/internal/storage"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/document"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/output"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/parser"
)

var version = "dev"

var (
	configPath  string
	logLevel    string
	outputPath  string
	compression string
	stepTimeout string
	packageName string
	publish     bool
	pretty      bool
	withCells   bool
	withStyles  bool
	addr        string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlpack",
		Short: "Assemble spreadsheet packages from workbook documents",
		Long: `xlpack builds .xlsx packages from JSON or YAML workbook documents,
inspects existing packages, and serves the build API over HTTP.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	buildCmd := &cobra.Command{
		Use:   "build [document.json|yaml]",
		Short: "Build a package from a workbook document",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: <name>.xlsx)")
	buildCmd.Flags().StringVar(&compression, "compression", "", "Compression: store, deflate, fastest, best")
	buildCmd.Flags().StringVar(&stepTimeout, "step-timeout", "", "Per-sheet timeout, e.g. 5s")
	buildCmd.Flags().StringVar(&packageName, "name", "", "Package name (default: document file name)")
	buildCmd.Flags().BoolVar(&publish, "store", false, "Publish to the configured storage backend")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "List the parts and relationships of a package",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	inspectCmd.Flags().BoolVar(&withCells, "cells", false, "Include cell contents as a workbook document")
	inspectCmd.Flags().BoolVar(&withStyles, "styles", false, "Include cell styles (implies --cells)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(buildCmd, inspectCmd, serveCmd, versionCmd)
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// stdout may carry the command's output, so logs go to stderr.
	logging.Setup(cfg.Log, os.Stderr)
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if compression != "" {
		cfg.Build.Compression = compression
	}
	if stepTimeout != "" {
		cfg.Build.StepTimeout = stepTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := document.ReadFile(inputPath)
	if err != nil {
		return err
	}

	name := packageName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}

	ctx := cmd.Context()
	deps := service.Deps{Logger: logging.Component("build"), Version: version}
	if publish {
		store, err := storage.NewPackageStore(ctx, storageConfig(cfg))
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		deps.Store = store

		rec, err := catalog.NewRecorder(ctx, catalog.Config{PostgresDSN: cfg.Catalog.PostgresDSN})
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer rec.Close()
		deps.Recorder = rec
	}

	b := service.NewBuilder(cfg.AssembleOptions(), deps)
	res, err := b.Build(ctx, service.Request{Name: name, Document: doc, Publish: publish})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if res.Published != nil {
		data, err := res.Manifest.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		if outputPath == "" {
			return nil
		}
	}

	out := outputPath
	if out == "" {
		out = name + ".xlsx"
	}
	if err := os.WriteFile(out, res.Package, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Info("package written", "path", out, "bytes", len(res.Package), "checksum", res.Manifest.Package.Checksum)
	return nil
}

// inspection is the JSON written by the inspect command.
type inspection struct {
	Container *parser.ContainerInfo `json:"container"`
	Package   *parser.Package       `json:"package,omitempty"`
	Problems  []string              `json:"problems,omitempty"`
	Document  interface{}           `json:"document,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := loadConfig(); err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", inputPath)
		}
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	var result inspection
	result.Container, err = parser.DetectContainer(f)
	if err != nil && !errors.Is(err, parser.ErrEncryptedPackage) && !errors.Is(err, parser.ErrLegacyFormat) {
		return fmt.Errorf("inspection failed: %w", err)
	}
	if err != nil {
		// Compound files cannot be opened as packages; report what was found.
		result.Problems = append(result.Problems, err.Error())
		return writeJSON(result)
	}

	result.Package, err = parser.ReadPackage(f, fi.Size())
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}
	if err := result.Package.Verify(); err != nil {
		result.Problems = append(result.Problems, err.Error())
	}

	if withCells || withStyles {
		xf, err := excelize.OpenFile(inputPath)
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
		defer xf.Close()

		doc, err := parser.ReadDocument(xf, parser.CellOptions{Links: true, Styles: withStyles})
		if err != nil {
			return fmt.Errorf("read cells: %w", err)
		}
		result.Document = doc
	}

	return writeJSON(result)
}

func writeJSON(v interface{}) error {
	jsonData, err := output.ToJSON(v, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := storage.NewPackageStore(openCtx, storageConfig(cfg))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	rec, err := catalog.NewRecorder(openCtx, catalog.Config{PostgresDSN: cfg.Catalog.PostgresDSN})
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer rec.Close()

	m := metrics.New(nil, "xlpack")
	b := service.NewBuilder(cfg.AssembleOptions(), service.Deps{
		Store:    store,
		Recorder: rec,
		Metrics:  m,
		Logger:   logging.Component("build"),
		Version:  version,
	})

	srv := server.NewServer(cfg.Server, b, m, version, logging.Component("http"))
	return srv.Run(ctx, cfg.Server.Addr)
}

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Backend:    cfg.Storage.Backend,
		LocalDir:   cfg.Storage.LocalDir,
		Bucket:     cfg.Storage.Bucket,
		S3Endpoint: cfg.Storage.S3Endpoint,
		S3Region:   cfg.Storage.S3Region,
		Prefix:     cfg.Storage.Prefix,
	}
}

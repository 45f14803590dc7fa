package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"truckspec/internal/aggregate"
	"truckspec/internal/catalog"
	"truckspec/internal/config"
	"truckspec/internal/export"
	"truckspec/internal/graph"
	"truckspec/internal/parser"
	"truckspec/internal/store"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := setupContext()
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the configuration shared by all subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "truckspec",
		Short: "Extract engine and transmission specs from truck definition files",
		Long: `Scans <root>/<brand>.<model>/{engine,transmission}/*.sii definition files,
extracts engine and transmission specifications and writes them as a
brand -> model -> component JSON catalogue.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			zerolog.SetGlobalLevel(cfg.Level())
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("ext", "sii", "Definition file extension")
	flags.String("def-prefix", parser.DefaultDefPrefix, "Prefix of the code attached to every record")
	flags.Bool("require-rpm-limit", false, "Reject engines without an rpm_limit line")
	flags.Int("workers", 1, "Model folders scanned concurrently")
	a.bind("log_level", flags.Lookup("log-level"))
	a.bind("extension", flags.Lookup("ext"))
	a.bind("def_prefix", flags.Lookup("def-prefix"))
	a.bind("require_rpm_limit", flags.Lookup("require-rpm-limit"))
	a.bind("workers", flags.Lookup("workers"))

	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.inspectCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.publishCmd())

	return rootCmd
}

// bind makes flag override the config key when set on the command line.
func (a *app) bind(key string, flag *pflag.Flag) {
	_ = a.v.BindPFlag(key, flag)
}

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [root]",
		Short: "Scan a truck tree and write the JSON catalogue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Root = args[0]
			}
			if compact, _ := cmd.Flags().GetBool("compact"); compact {
				a.cfg.Pretty = false
			}
			return a.runExtract(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("output", "o", "trucks.json", "Output path of the JSON catalogue")
	cmd.Flags().Bool("compact", false, "Write compact instead of indented JSON")
	cmd.Flags().String("tsv", "", "Also write a flat TSV export to this path")
	a.bind("output", cmd.Flags().Lookup("output"))
	a.bind("tsv_output", cmd.Flags().Lookup("tsv"))

	return cmd
}

// runExtract handles the `extract` command.
func (a *app) runExtract(ctx context.Context, out io.Writer) error {
	doc, stats, err := aggregate.New(a.cfg).Run(ctx, a.cfg.Root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", a.cfg.Root, err)
	}

	if err := export.WriteJSON(doc, a.cfg.Output, a.cfg.Pretty); err != nil {
		fmt.Fprintf(out, "%s %v\n", failText("output not written:"), err)
		return err
	}

	if a.cfg.TSVOutput != "" {
		if err := export.WriteTSV(doc, a.cfg.TSVOutput); err != nil {
			return err
		}
	}

	printSummary(out, doc, stats)
	fmt.Fprintf(out, "%s %s\n", okText("wrote"), a.cfg.Output)
	return nil
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Parse a single definition file and dump the record",
		Long: `Parses one engine or transmission file and prints the extracted record.
The kind is taken from --kind or, when omitted, from the name of the
directory holding the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			return a.runInspect(cmd.OutOrStdout(), args[0], parser.Kind(kind))
		},
	}

	cmd.Flags().String("kind", "", "Record kind: engine or transmission")
	return cmd
}

// runInspect handles the `inspect` command.
func (a *app) runInspect(out io.Writer, filePath string, kind parser.Kind) error {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(abs)
	if kind == "" {
		kind = parser.Kind(filepath.Base(dir))
	}
	src := parser.Source{Folder: filepath.Base(filepath.Dir(dir)), File: filepath.Base(abs)}
	opts := a.cfg.ParserOptions()

	var record any
	switch kind {
	case parser.KindEngine:
		record, err = parser.NewEngineParser(opts).ParseFile(abs, src)
	case parser.KindTransmission:
		record, err = parser.NewTransmissionParser(opts).ParseFile(abs, src)
	default:
		return fmt.Errorf("unknown record kind %q (use --kind engine|transmission)", kind)
	}

	if err != nil {
		var ie *parser.IncompleteError
		if errors.As(err, &ie) {
			fmt.Fprintf(out, "%s %s\n", warnText("no record:"), ie.Reason)
		}
		return err
	}

	pp.Fprintln(out, record)
	return nil
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalogue.json>",
		Short: "Check a catalogue file against the catalogue schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

// runValidate handles the `validate` command.
func runValidate(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalogue: %w", err)
	}

	if err := export.Validate(data); err != nil {
		fmt.Fprintf(out, "%s %s\n", failText("invalid:"), path)
		return err
	}

	doc, err := export.DecodeJSON(data)
	if err != nil {
		return err
	}

	models, engines, transmissions := doc.Totals()
	fmt.Fprintf(out, "%s %s: %d brands, %d models, %d engines, %d transmissions\n",
		okText("valid:"), path, len(doc), models, engines, transmissions)
	return nil
}

func (a *app) publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [root]",
		Short: "Scan a truck tree and publish it to PostgreSQL and/or Neo4j",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Root = args[0]
			}
			return a.runPublish(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("neo4j-uri", "", "Neo4j bolt URI")
	cmd.Flags().String("neo4j-user", "neo4j", "Neo4j user")
	cmd.Flags().String("neo4j-password", "", "Neo4j password")
	cmd.Flags().Int("batch-size", 100, "Models per PostgreSQL batch")
	a.bind("database_url", cmd.Flags().Lookup("database-url"))
	a.bind("neo4j_uri", cmd.Flags().Lookup("neo4j-uri"))
	a.bind("neo4j_user", cmd.Flags().Lookup("neo4j-user"))
	a.bind("neo4j_password", cmd.Flags().Lookup("neo4j-password"))
	a.bind("batch_size", cmd.Flags().Lookup("batch-size"))

	return cmd
}

// runPublish handles the `publish` command.
func (a *app) runPublish(ctx context.Context, out io.Writer) error {
	if a.cfg.DatabaseURL == "" && a.cfg.Neo4jURI == "" {
		return errors.New("nothing to publish to: set --database-url and/or --neo4j-uri")
	}

	doc, stats, err := aggregate.New(a.cfg).Run(ctx, a.cfg.Root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", a.cfg.Root, err)
	}
	printSummary(out, doc, stats)

	if a.cfg.DatabaseURL != "" {
		if err := publishPostgres(ctx, a.cfg, doc); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s PostgreSQL\n", okText("published to"))
	}

	if a.cfg.Neo4jURI != "" {
		if err := publishNeo4j(ctx, a.cfg, doc); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Neo4j\n", okText("published to"))
	}

	return nil
}

func publishPostgres(ctx context.Context, cfg *config.Config, doc catalog.Document) error {
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	s := store.NewCatalogStore(pool, cfg.BatchSize)
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := s.Publish(ctx, doc); err != nil {
		return err
	}
	return nil
}

func publishNeo4j(ctx context.Context, cfg *config.Config, doc catalog.Document) error {
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	gb := graph.NewGraphBuilder(driver)
	if err := gb.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}
	return gb.Publish(ctx, doc)
}

// printSummary writes per-brand model counts and the run totals.
func printSummary(out io.Writer, doc catalog.Document, stats aggregate.Stats) {
	for _, brand := range doc.Brands() {
		fmt.Fprintf(out, "  %-16s %d models\n", brand, len(doc[brand]))
	}
	fmt.Fprintf(out, "%s %d models, %d engines, %d transmissions from %d folders\n",
		okText("extracted"), stats.Models, stats.Engines, stats.Transmissions, stats.Folders)
	if stats.SkippedFolders > 0 || stats.SkippedFiles > 0 {
		fmt.Fprintf(out, "%s %d folders, %d files\n",
			warnText("skipped"), stats.SkippedFolders, stats.SkippedFiles)
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

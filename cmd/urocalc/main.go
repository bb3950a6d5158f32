// Package main provides the urocalc command line: list the calculators,
// describe one, or evaluate one locally.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uro-calc-engine/internal/calculator"
	"github.com/uro-calc-engine/internal/config"
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/report"
	"github.com/uro-calc-engine/internal/service"
	"github.com/uro-calc-engine/internal/setup"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "urocalc",
		Short:         "Urology calculators: PSA, prostate volume, IPSS, bladder capacity and more",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log evaluation details to stderr")

	newService := func() (*service.CalculatorService, error) {
		cfg := config.LoadLiteConfig()
		logger := cfg.NewLogger()
		if !verbose {
			logger.SetLevel(logrus.WarnLevel)
		}
		return service.NewCalculatorService(logger, calculator.NewRegistry(cfg.EngineOptions()), cfg.CacheConfig())
	}

	rootCmd.AddCommand(
		newListCmd(newService),
		newDescribeCmd(newService),
		newEvaluateCmd(newService),
		newSetupCmd(),
	)
	return rootCmd
}

type serviceFactory func() (*service.CalculatorService, error)

func newListCmd(newService serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available calculators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			for _, entry := range svc.Catalog() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", entry.Schema.Name, entry.Schema.Title)
			}
			return nil
		},
	}
}

func newDescribeCmd(newService serviceFactory) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe [calculator]",
		Short: "Show a calculator's inputs and band tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			entry, err := svc.Describe(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			writeSchema(cmd.OutOrStdout(), entry.Schema)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the schema and band tables as JSON")
	return cmd
}

func newEvaluateCmd(newService serviceFactory) *cobra.Command {
	var sets []string
	var rows []string
	var inputFile string
	var format string

	cmd := &cobra.Command{
		Use:   "evaluate [calculator]",
		Short: "Evaluate a calculator from field values",
		Long: `Evaluate a calculator locally and print the result.

Values are given as --set name=value; repeated entries (voiding diary) as
--row time=07:00,volume=300. A JSON file of the form
{"values": {...}, "rows": [{...}]} can be given with --input; --set and
--row values are applied on top of it.

Example: urocalc evaluate psa-density --set psa=4.5 --set volume=24.76 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := buildInput(inputFile, sets, rows)
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}

			result, err := svc.Evaluate(cmd.Context(), args[0], in)
			if err != nil {
				var incomplete *domain.IncompleteInputError
				if errors.As(err, &incomplete) {
					for _, p := range incomplete.Problems {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", p.Field, p.Message)
					}
					return fmt.Errorf("%s: input is incomplete", args[0])
				}
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), result.Record)
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			rendered, err := report.Render(result.Record, f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&rows, "row", nil, "Repeated entry as col=value,col=value (repeatable)")
	cmd.Flags().StringVar(&inputFile, "input", "", "JSON file with values and rows")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json|markdown|html")
	return cmd
}

func newSetupCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register urocalc-mcp with a desktop MCP client",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Client config file (default: platform location)")

	var opts setup.Options
	install := &cobra.Command{
		Use:   "install",
		Short: "Add or update the calculator server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			written, err := setup.Configure(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n", setup.ServerName, written)
			return nil
		},
	}
	install.Flags().StringVar(&opts.BinaryPath, "binary", "", "Path to urocalc-mcp (default: search PATH)")
	install.Flags().BoolVar(&opts.StrictRanges, "strict-ranges", false, "Reject values outside advisory ranges")
	install.Flags().StringVar(&opts.LogLevel, "log-level", "", "Server log level")

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove the calculator server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := setup.Remove(configPath)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed", setup.ServerName)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), setup.ServerName, "was not registered")
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is registered and runnable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := setup.GetStatus(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:     %s\n", st.ConfigPath)
			fmt.Fprintf(out, "Registered: %t\n", st.Configured)
			if st.ServerPath != "" {
				fmt.Fprintf(out, "Server:     %s\n", st.ServerPath)
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(out, "  ! %s\n", issue)
			}
			if !st.OK() {
				return errors.New("setup is incomplete")
			}
			return nil
		},
	}

	cmd.AddCommand(install, remove, status)
	return cmd
}

// buildInput merges the input file, --set values and --row entries.
func buildInput(inputFile string, sets, rows []string) (domain.Input, error) {
	in := domain.Input{Values: map[string]string{}}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return in, fmt.Errorf("failed to read input file: %w", err)
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("invalid input file %s: %w", inputFile, err)
		}
		if in.Values == nil {
			in.Values = map[string]string{}
		}
	}

	for _, s := range sets {
		name, value, err := splitPair(s)
		if err != nil {
			return in, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		in.Values[name] = value
	}

	for _, r := range rows {
		row := map[string]string{}
		for _, part := range strings.Split(r, ",") {
			name, value, err := splitPair(part)
			if err != nil {
				return in, fmt.Errorf("invalid --row %q: %w", r, err)
			}
			row[name] = value
		}
		in.Rows = append(in.Rows, row)
	}

	return in, nil
}

func splitPair(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", errors.New("expected name=value")
	}
	return name, strings.TrimSpace(value), nil
}

func writeSchema(w io.Writer, schema domain.Schema) {
	fmt.Fprintf(w, "%s (%s)\n%s\n\n", schema.Title, schema.Name, schema.Description)
	for _, f := range schema.Fields {
		writeField(w, f, "  ")
		for _, col := range f.Columns {
			writeField(w, col, "      ")
		}
	}
}

func writeField(w io.Writer, f domain.Field, indent string) {
	var notes []string
	if f.Required {
		notes = append(notes, "required")
	} else if f.Default != "" {
		notes = append(notes, "default "+f.Default)
	}
	if f.Unit != "" {
		notes = append(notes, f.Unit)
	}
	if f.Hint != "" {
		notes = append(notes, "range "+f.Hint)
	}
	if len(f.Options) > 0 {
		notes = append(notes, strings.Join(f.Options, "|"))
	}
	fmt.Fprintf(w, "%s%-18s %-8s %s\n", indent, f.Name, f.Kind, strings.Join(notes, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

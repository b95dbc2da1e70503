package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mcp-pdf-filler",
	Short: "Fill PDF forms from CSV data",
	Long: `Fill the AcroForm fields of a PDF template from the rows of a CSV file.

Run "serve" to expose the tools over the Model Context Protocol, or use the
fields, locate, fill and batch commands directly.`,
	SilenceUsage: true,
	Version:      version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetErr(os.Stderr)
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// SetVersion sets the version reported by --version and the MCP server.
func SetVersion(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("mcp-pdf-filler {{.Version}}\nBuild time: %s\nGit commit: %s\nGo version: %s\n",
		built, commit, runtime.Version()))
}

// newLogger writes to stderr so stdout stays free for the MCP protocol and
// for command output.
func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// loadService resolves the configuration from the command's flags and the
// environment and builds the service.
func loadService(cmd *cobra.Command) (*config.Config, *slog.Logger, *pdf.Service, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg)
	svc, err := pdf.NewService(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create service: %w", err)
	}
	return cfg, logger, svc, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseMappings turns repeated Field=Column flags into a mapping.
func parseMappings(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, column, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected Field=Column", pair)
		}
		out[field] = strings.TrimSpace(column)
	}
	return out, nil
}

// mappingFlags are shared by the commands that fill documents.
type mappingFlags struct {
	pairs      []string
	configPath string
}

func (m *mappingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&m.pairs, "map", "m", nil, "Field=Column mapping (repeatable)")
	cmd.Flags().StringVar(&m.configPath, "mapping-config", "", "Exported mapping configuration (JSON)")
}

func (m *mappingFlags) source() (pdf.MappingSource, error) {
	mapping, err := parseMappings(m.pairs)
	if err != nil {
		return pdf.MappingSource{}, err
	}
	if mapping == nil && m.configPath == "" {
		return pdf.MappingSource{}, fmt.Errorf("provide --map Field=Column or --mapping-config")
	}
	return pdf.MappingSource{ConfigPath: m.configPath, Mapping: mapping}, nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/pipeline"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	dataDir string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "omnieval",
	Short: "omnieval - browse and score article requirement evaluations",
	Long: `omnieval serves and summarises requirement evaluations of encyclopedia
articles.

Each article is evaluated sentence by sentence and section by section
against a catalog of editorial requirements. omnieval joins those
evaluations with the catalog, drops entries without a score, and computes
sentence, section and article scores.

It never generates evaluations; it only reads them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetViper())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of omnieval.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "omnieval %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.omnieval/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ./data)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".omnieval"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// OMNIEVAL_SERVER_ADDR overrides server.addr and so on
	viper.SetEnvPrefix("OMNIEVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("output.verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// newLogger builds the production logger; output.verbose (flag, env or
// config file) switches it to debug
func newLogger(v *viper.Viper) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if v.GetBool("output.verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// setDefaults registers every config key so env variables can override it
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("data.dir", cfg.Data.Dir)
	v.SetDefault("data.default_key", cfg.Data.DefaultKey)
	v.SetDefault("data.default_source", cfg.Data.DefaultSource)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_header_timeout", cfg.Server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.rate_limit.requests_per_second", cfg.Server.RateLimit.RequestsPerSecond)
	v.SetDefault("server.rate_limit.burst", cfg.Server.RateLimit.Burst)
	v.SetDefault("server.rate_limit.idle_ttl", cfg.Server.RateLimit.IdleTTL)
	v.SetDefault("server.trust_proxy", cfg.Server.TrustProxy)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.include_footer", cfg.Output.IncludeFooter)
}

// loadConfig resolves flags, env, config file and defaults into one Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := model.ParseSource(cfg.Data.DefaultSource); err != nil {
		return nil, fmt.Errorf("data.default_source: %w", err)
	}
	if cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = 1
	}
	return cfg, nil
}

// newPipeline loads the data directory and builds a pipeline over it
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	reg, err := dataset.Load(cfg.Data.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	logger.Debug("data loaded", zap.String("dir", cfg.Data.Dir), zap.Int("articles", len(reg.Keys())))
	return pipeline.NewPipeline(cfg, reg, logger), nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/httpapi"
	"github.com/rohmanhakim/docs-crawler/internal/registry"
	"github.com/rohmanhakim/docs-crawler/internal/search"
	"github.com/spf13/cobra"
)

var (
	cfgFile              string
	dataDir              string
	listenAddr           string
	defaultHitRate       float64
	defaultMaxDepth      int
	defaultQueueCapacity int
	defaultMaxURLs       int
	logRingSize          int
)

// rootCmd represents the base command when called without any subcommands.
// The platform has exactly one operational mode: serve the control API, so
// the root command itself runs it rather than delegating to a subcommand.
var rootCmd = &cobra.Command{
	Use:   "crawld",
	Short: "A managed, multi-tenant web crawling platform.",
	Long: `crawld runs the docs-crawler control plane: a JSON-over-HTTP API for
creating, pausing, resuming, and stopping independent crawl jobs, a
process-wide visited-URL registry shared across every job, and a search
engine over the resulting inverted word index.

On startup crawld reconciles any crawlers/{id}.status files left behind by
a prior process, marking running-looking jobs Interrupted, then begins
serving traffic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := InitConfigWithError()
		if err != nil {
			return err
		}

		reg := registry.New(platform)
		if err := reg.Reconcile(); err != nil {
			return fmt.Errorf("reconcile registry: %w", err)
		}

		engine := search.NewEngine(platform.DataDir(), 0)
		server := httpapi.NewServer(reg, engine)

		slog.Info("crawld listening", slog.String("addr", platform.ListenAddr()), slog.String("data_dir", platform.DataDir()))
		return http.ListenAndServe(platform.ListenAddr(), server)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "platform config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "root directory for crawl state (default \"data\")")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", "", "control API bind address (default \":3600\")")
	rootCmd.PersistentFlags().Float64Var(&defaultHitRate, "default-hit-rate", 0, "fetches/sec a new job gets when it omits hit_rate")
	rootCmd.PersistentFlags().IntVar(&defaultMaxDepth, "default-max-depth", 0, "link depth a new job gets when it omits max_depth")
	rootCmd.PersistentFlags().IntVar(&defaultQueueCapacity, "default-queue-capacity", 0, "frontier capacity a new job gets when it omits max_queue_capacity")
	rootCmd.PersistentFlags().IntVar(&defaultMaxURLs, "default-max-urls", 0, "visit budget a new job gets when it omits max_urls_to_visit (0 == unbounded)")
	rootCmd.PersistentFlags().IntVar(&logRingSize, "log-ring-size", 0, "per-job in-memory log ring capacity")
}

// InitConfig reads in config file and CLI flags, exiting the process on
// error, for callers that have nowhere to propagate errors to. The root
// command's RunE uses InitConfigWithError instead.
func InitConfig() config.PlatformConfig {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads in config file and CLI flags, returning any
// errors instead of exiting, so tests can exercise failure paths.
func InitConfigWithError() (config.PlatformConfig, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if dataDir != "" {
		configBuilder = configBuilder.WithDataDir(dataDir)
	}
	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}
	if defaultHitRate > 0 {
		configBuilder = configBuilder.WithDefaultHitRate(defaultHitRate)
	}
	if defaultMaxDepth > 0 {
		configBuilder = configBuilder.WithDefaultMaxDepth(defaultMaxDepth)
	}
	if defaultQueueCapacity > 0 {
		configBuilder = configBuilder.WithDefaultQueueCapacity(defaultQueueCapacity)
	}
	if defaultMaxURLs > 0 {
		configBuilder = configBuilder.WithDefaultMaxURLs(defaultMaxURLs)
	}
	if logRingSize > 0 {
		configBuilder = configBuilder.WithLogRingSize(logRingSize)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.PlatformConfig{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	dataDir = ""
	listenAddr = ""
	defaultHitRate = 0
	defaultMaxDepth = 0
	defaultQueueCapacity = 0
	defaultMaxURLs = 0
	logRingSize = 0
}

// Test helper functions to set flag values from tests.
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetDataDirForTest(dir string) {
	dataDir = dir
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}

func SetDefaultHitRateForTest(rate float64) {
	defaultHitRate = rate
}

func SetDefaultMaxDepthForTest(depth int) {
	defaultMaxDepth = depth
}

func SetDefaultQueueCapacityForTest(capacity int) {
	defaultQueueCapacity = capacity
}

func SetDefaultMaxURLsForTest(max int) {
	defaultMaxURLs = max
}

func SetLogRingSizeForTest(size int) {
	logRingSize = size
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"turtlesoup/internal/config"
	"turtlesoup/internal/logger"
)

const (
	releaseVersion = "0.1.0"
	envPrefix      = "TURTLESOUP"
)

// Unprefixed variables that are also honored, for compatibility with the
// usual Gemini tooling.
var envAliases = map[string]string{
	"gemini-api-key": "GEMINI_API_KEY",
	"gemini-model":   "GEMINI_MODEL",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "turtlesoup",
		Short:   "Multiplayer lateral-thinking puzzle rooms judged by an AI game master.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Setup(cfg.LogLevel, cfg.LogFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	d := config.Default()
	fs.StringVarP(&cfg.Bind, "bind", "b", d.Bind, "address to bind to (env: TURTLESOUP_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", d.Port, "port to listen on (env: TURTLESOUP_PORT)")
	fs.StringVar(&cfg.PublicURL, "public-url", d.PublicURL, "client base url used in share links (env: TURTLESOUP_PUBLIC_URL)")
	fs.StringVar(&cfg.CORSOrigins, "cors-origins", d.CORSOrigins, "value of Access-Control-Allow-Origin (env: TURTLESOUP_CORS_ORIGINS)")
	fs.StringVar(&cfg.CatalogFile, "catalog-file", d.CatalogFile, "json file of puzzles to serve instead of the built-in set (env: TURTLESOUP_CATALOG_FILE)")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", d.MongoURI, "load puzzles from this mongodb (env: TURTLESOUP_MONGO_URI)")
	fs.StringVar(&cfg.MongoDatabase, "mongo-database", d.MongoDatabase, "mongodb database name (env: TURTLESOUP_MONGO_DATABASE)")
	fs.StringVar(&cfg.MongoCollection, "mongo-collection", d.MongoCollection, "mongodb puzzle collection (env: TURTLESOUP_MONGO_COLLECTION)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", d.RedisAddr, "cache verdicts in this redis (env: TURTLESOUP_REDIS_ADDR)")
	fs.DurationVar(&cfg.VerdictTTL, "verdict-ttl", d.VerdictTTL, "lifetime of cached verdicts (env: TURTLESOUP_VERDICT_TTL)")
	fs.StringVar(&cfg.AI.APIKey, "gemini-api-key", d.AI.APIKey, "gemini api key (env: GEMINI_API_KEY)")
	fs.StringVar(&cfg.AI.Model, "gemini-model", d.AI.Model, "gemini model used to judge questions (env: GEMINI_MODEL)")
	fs.StringVar(&cfg.AI.BaseURL, "gemini-base-url", d.AI.BaseURL, "gemini api base url (env: TURTLESOUP_GEMINI_BASE_URL)")
	fs.DurationVar(&cfg.AI.Timeout, "oracle-timeout", d.AI.Timeout, "time limit for one judgment (env: TURTLESOUP_ORACLE_TIMEOUT)")
	fs.StringVar(&cfg.LogLevel, "log-level", d.LogLevel, "trace, debug, info, warn or error (env: TURTLESOUP_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", d.LogFormat, "console or json (env: TURTLESOUP_LOG_FORMAT)")

	bindEnv(v, fs)

	cmd.AddCommand(newSeedCmd(cfg), newModelsCmd(cfg), newPlayCmd(v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("turtlesoup v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// bindEnv copies environment values into flags that were not given on the
// command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if alias, ok := envAliases[f.Name]; ok {
			_ = v.BindEnv(f.Name, envName(f.Name), alias)
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func envName(flag string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

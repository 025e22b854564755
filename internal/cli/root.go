package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wikiquiz/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wikiquiz",
	Short: "WikiQuiz - AI quiz generation from Wikipedia articles",
	Long: `WikiQuiz turns a Wikipedia article URL into a structured multiple-choice quiz.

It scrapes the article, asks a text-generation model for questions grounded
strictly in the article text, repairs the model's frequently malformed JSON
output, and caches the finished quiz by URL so an article is never processed
twice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("wikiquiz v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wikiquiz/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	// A local .env is convenient for API keys during development.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.wikiquiz")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Environment variables matching WIKIQUIZ_* override the file.
	viper.SetEnvPrefix("WIKIQUIZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults with config file and environment overrides.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetInt("llm.max_input_chars"); v > 0 {
		cfg.LLM.MaxInputChars = v
	}
	if v := viper.GetString("diag.dir"); v != "" {
		cfg.Diag.Dir = v
	}
	if v := viper.GetString("http.user_agent"); v != "" {
		cfg.HTTP.UserAgent = v
	}

	return cfg
}

// resolveAPIKey pulls provider credentials from the environment. Keys never
// live in the config file.
func resolveAPIKey(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key.
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

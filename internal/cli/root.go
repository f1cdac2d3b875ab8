// Package cli implements the alora operator CLI: a thin cobra/viper
// front over pkg/client for poking a running API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alora-app/alora/pkg/client"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "alora",
	Short: "Alora CLI - operator tooling for the coaching API",
	Long: `Alora CLI provides command-line access to a running Alora API
for checking health, signing in, inspecting generated modules and
previewing the coaching prompts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config and prompt commands run without a server.
		if cmd.Name() == "init" || cmd.Name() == "set" || cmd.Name() == "get" ||
			(cmd.Parent() != nil && (cmd.Parent().Name() == "config" || cmd.Parent().Name() == "prompt")) {
			return nil
		}
		if cmd.Name() == "login" {
			return initClient()
		}
		return initAuthenticatedClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.alora/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newModulesCmd())
	rootCmd.AddCommand(newPromptCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.alora"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ALORA")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func resolveServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	if url := viper.GetString("server_url"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func initClient() error {
	apiClient = client.NewClient(client.Config{BaseURL: resolveServerURL()})
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}
	token := viper.GetString("auth.token")
	if token == "" {
		return fmt.Errorf("not logged in; run 'alora auth login' first")
	}
	apiClient.SetToken(token)
	return nil
}

func getOutputFormat() string {
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return outputFormat
}

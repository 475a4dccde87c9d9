package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/services"
)

const (
	app = "hrai-token"

	promptOverwrite = "Overwrite it"
	promptKeep      = "Keep the existing token"
)

type tokenConfig struct {
	Credentials string `mapstructure:"credentials"`
	TokenFile   string `mapstructure:"token-file"`
	Manual      bool   `mapstructure:"manual"`
	Yes         bool   `mapstructure:"yes"`
	Debug       bool   `mapstructure:"debug"`
	JSON        bool   `mapstructure:"json"`
}

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "Authorize Google Calendar access and write the token file used for interview scheduling",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
	SilenceUsage: true,
}

func init() {
	viper.SetEnvPrefix("HRAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("token-file", "CALENDAR_TOKEN_FILE", "HRAI_TOKEN_FILE"); err != nil {
		log.Fatalf("binding CALENDAR_TOKEN_FILE environment variable: %v", err)
	}

	rootCmd.Flags().StringP("credentials", "c", "credentials.json", "OAuth client secrets downloaded from the Google Cloud console")
	rootCmd.Flags().StringP("token-file", "t", "token.json", "where to write the authorized token")
	rootCmd.Flags().BoolP("manual", "m", false, "paste the authorization code instead of running a local callback server")
	rootCmd.Flags().BoolP("yes", "y", false, "overwrite an existing token file without asking")
	rootCmd.Flags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.Flags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("credentials", rootCmd.Flags().Lookup("credentials"))
	viper.BindPFlag("token-file", rootCmd.Flags().Lookup("token-file"))
	viper.BindPFlag("manual", rootCmd.Flags().Lookup("manual"))
	viper.BindPFlag("yes", rootCmd.Flags().Lookup("yes"))
	viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.Flags().Lookup("json"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	var cfg tokenConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	tokenFile := cfg.TokenFile

	proceed, err := confirmOverwrite(tokenFile, cfg.Yes)
	if err != nil {
		return err
	}
	if !proceed {
		log.Info("token file kept", zap.String("path", tokenFile))
		return nil
	}

	secrets, err := os.ReadFile(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("reading client secrets: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(secrets, calendar.CalendarScope)
	if err != nil {
		return fmt.Errorf("parsing client secrets: %w", err)
	}

	var flow authFlow = loopbackFlow
	if cfg.Manual {
		flow = manualFlow
	}

	tok, err := flow(cmd.Context(), oauthCfg, log)
	if err != nil {
		return err
	}

	if err := services.SaveTokenFile(tokenFile, services.NewTokenFile(oauthCfg, tok)); err != nil {
		return err
	}

	log.Info("token file written", zap.String("path", tokenFile))
	return nil
}

func confirmOverwrite(path string, assumeYes bool) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, err
	}

	if assumeYes {
		return true, nil
	}

	prompt := promptui.Select{
		Label: fmt.Sprintf("%s already exists", path),
		Items: []string{promptOverwrite, promptKeep},
	}

	_, choice, err := prompt.Run()
	if err != nil {
		return false, err
	}

	return choice == promptOverwrite, nil
}

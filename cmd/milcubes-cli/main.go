package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

var (
	version = "dev"

	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "milcubes-cli",
	Version: version,
	Short:   "Client for the MilCubes admin API",
	Long: `MilCubes CLI - Client for the MilCubes platform's admin API

Every command needs a login method: either a browser cookies export
(--cookies) or a username (--username) with an optional password. When the
password is omitted it is prompted for interactively.

Saved profiles (see "configure") and MILCUBES_* environment variables supply
defaults; flags take precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ~/.milcubes/config.yaml)")
	pf.String("profile", "", "profile name (env: MILCUBES_PROFILE)")
	pf.String("base-url", "", "platform base URL (default: "+milcubes.DefaultBaseURL+", env: MILCUBES_BASE_URL)")
	pf.StringP("username", "u", "", "login username (env: MILCUBES_USERNAME)")
	pf.StringP("password", "p", "", "login password, prompted when omitted (env: MILCUBES_PASSWORD)")
	pf.StringP("cookies", "c", "", "JSON cookies file exported from a browser (env: MILCUBES_COOKIES)")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	bindEnv(pf)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(configureCmd)
}

// bindEnv wires every persistent flag to a MILCUBES_* environment variable,
// flags taking precedence over the environment.
func bindEnv(fs *pflag.FlagSet) {
	viper.SetEnvPrefix("MILCUBES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig merges config from profile file, env vars, and flags
// (flags take precedence).
func buildConfig() (*milcubes.Config, error) {
	var configs []*milcubes.Config

	configPath := viper.GetString("config")
	explicit := configPath != ""
	if configPath == "" {
		configPath = milcubes.DefaultConfigPath()
	}

	if configPath != "" {
		configFile, err := milcubes.LoadConfigFile(configPath)
		switch {
		case err != nil && explicit:
			return nil, err
		case err == nil:
			profile, err := configFile.GetProfile(viper.GetString("profile"))
			if err != nil {
				// A named profile that does not exist is an error; an empty
				// or absent config file is not.
				if viper.GetString("profile") != "" {
					return nil, err
				}
			} else {
				configs = append(configs, milcubes.ConfigFromProfile(profile))
			}
		}
	}

	configs = append(configs, &milcubes.Config{
		BaseURL:     viper.GetString("base-url"),
		Username:    viper.GetString("username"),
		Password:    viper.GetString("password"),
		CookiesFile: viper.GetString("cookies"),
	})

	cfg := milcubes.MergeConfig(configs...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() milcubes.Formatter {
	return milcubes.NewFormatter(jsonOutput, quiet)
}

// reportError prints the error without aborting the process. Failed logins,
// missing projects, and platform errors are part of normal operation for an
// interactive tool; the command just does not complete.
func reportError(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return nil
}

// findProject resolves the --id / --title selector against a collection.
func findProject(ctx context.Context, projects *milcubes.ProjectCollection, id int64, title string) (*milcubes.Project, error) {
	if id != 0 {
		return projects.FindByID(ctx, id)
	}
	return projects.FindByTitle(ctx, title)
}

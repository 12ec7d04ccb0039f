/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/L4er70/ContactBook/dev/config"
	"github.com/L4er70/ContactBook/shared"
	"github.com/L4er70/ContactBook/version"
	"github.com/fatih/color"
	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "CONTACTBOOK"

var (
	serverConfigFile string
	isDevEnv         bool

	red = color.New(color.FgRed).SprintFunc()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)

	rootCmd.AddCommand(createServerCmd(), createExportCmd())
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "contactbook",
		Short: `contactbook keeps a shared book of contacts, each with
any number of emails, phone numbers and addresses.

It serves a JSON API to create, edit, search and export contacts as CSV or XLSX.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&serverConfigFile, "sconfig", "", "server config file")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

// loadServerConfig reads the server config from 'configFile', or from the bundled
// dev config in dev mode. Env vars prefixed with CONTACTBOOK_ override file values
// e.g. CONTACTBOOK_DATABASE_PASSPHRASE for database.passPhrase.
func loadServerConfig(configFile string, devMode bool) (*shared.ServerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case devMode:
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(config.SERVER_YML)); err != nil {
			return nil, fmt.Errorf("error reading dev server config: %w", err)
		}
	case configFile != "":
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading server config file: %w", err)
		}
	default:
		return nil, formattedError("a server config file is required, set it with --sconfig or use --dev")
	}

	serverConfig := shared.ServerConfig{}
	if err := v.Unmarshal(&serverConfig); err != nil {
		return nil, fmt.Errorf("error decoding server config: %w", err)
	}

	if err := validator.New().Struct(serverConfig); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	if err := serverConfig.Database.CheckDriverSettings(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return &serverConfig, nil
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(red(format), a...)
}

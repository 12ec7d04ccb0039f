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
	"os"
	"path/filepath"

	"github.com/L4er70/ContactBook/server"
	"github.com/L4er70/ContactBook/server/export"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/spf13/cobra"
)

func createExportCmd() *cobra.Command {
	var format, search, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export contacts to a CSV or XLSX file",
		Long: `Export writes every contact matching --search to a file, using the
same columns as the API export. By default the file is named after the format
e.g. contacts.csv, in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := export.Lookup(format)
			if err != nil {
				return err
			}

			serverConfig, err := loadServerConfig(serverConfigFile, isDevEnv)
			if err != nil {
				return err
			}

			err = models.AutoMigrate(serverConfig.Database, server.ConfigDirectory(isDevEnv), false)
			if err != nil {
				return err
			}
			defer models.Close()

			if output == "" {
				output = exportFormat.FileName
			}

			count, err := exportContactsToFile(exportFormat, search, output)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contact(s) to %s\n", count, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", fmt.Sprintf("export format, one of %v", export.FormatNames()))
	cmd.Flags().StringVarP(&search, "search", "s", "", "only export contacts matching this search term")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the export to")

	return cmd
}

func exportContactsToFile(format export.Format, search, output string) (int, error) {
	contacts, err := models.SearchContacts(search)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	if err = format.Write(f, contacts); err != nil {
		f.Close()
		return 0, err
	}

	return len(contacts), f.Close()
}

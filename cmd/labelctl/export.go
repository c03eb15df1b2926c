/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/suparena/labelregistry"
	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/labels"
	"github.com/suparena/labelregistry/storagemodels"
)

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the registry document as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := storagemodels.Document{
				Key:          labels.StorageKey,
				Version:      labels.StorageVersion,
				MinorVersion: labels.StorageMinorVersion,
				Data:         a.svc.Labels.Snapshot(),
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encoding yaml: %w", err)
				}
				return enc.Close()
			case "json":
				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding json: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			default:
				return errors.NewValidationError("format", fmt.Sprintf("unknown format %q (want yaml or json)", format))
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// no service needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := labelregistry.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "labelctl version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Storage version: %s\n", info.StorageVersion)
			return nil
		},
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/suparena/labelregistry"
	"github.com/suparena/labelregistry/config"
	"github.com/suparena/labelregistry/logging"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	stderr  io.Writer
	cfg     config.Config
	svc     *labelregistry.Service
}

// run executes one labelctl invocation and always flushes the registry
// before returning, even when the command failed.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return stderrors.Join(err, a.close(ctx))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "labelctl",
		Short: "Manage labels in a label registry",
		Long: `labelctl lists, creates, updates and deletes labels stored by the
label registry. Storage is selected with the "backend" setting from the config
file, LABELREGISTRY_* environment variables or the --backend flag.`,
		Version:           labelregistry.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./labelregistry.yaml if present)")
	root.PersistentFlags().String("backend", "", "storage backend: file, sqlite, dynamodb or redis")
	root.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR")

	root.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newFindCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root
}

// open loads configuration and opens the service before a subcommand runs.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	_ = v.BindPFlag("backend", cmd.Flags().Lookup("backend"))
	_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))

	a.cfg, err = config.FromViper(v)
	if err != nil {
		return err
	}

	logger := logging.New(a.stderr, a.cfg.Log.Level, a.cfg.Log.Format)
	a.svc, err = labelregistry.Open(cmd.Context(), a.cfg, logger)
	return err
}

func (a *app) close(ctx context.Context) error {
	if a.svc == nil {
		return nil
	}
	svc := a.svc
	a.svc = nil
	return svc.Close(ctx)
}

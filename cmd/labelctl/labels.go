/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/labels"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tICON\tDESCRIPTION")
			for _, e := range a.svc.Labels.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name,
					orDash(e.Color), orDash(e.Icon), orDash(e.Description))
			}
			return tw.Flush()
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a label by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := a.svc.Labels.Get(args[0])
			if !ok {
				return errors.NewNotFoundError("label", args[0])
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Show a label by name, ignoring case and whitespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := a.svc.Labels.GetByName(args[0])
			if !ok {
				return errors.NewNotFoundError("label", args[0])
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var color, description, icon string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []labels.CreateOption
			if cmd.Flags().Changed("color") {
				opts = append(opts, labels.WithColor(color))
			}
			if cmd.Flags().Changed("description") {
				opts = append(opts, labels.WithDescription(description))
			}
			if cmd.Flags().Changed("icon") {
				opts = append(opts, labels.WithIcon(icon))
			}

			e, err := a.svc.Labels.Create(args[0], opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "label color")
	cmd.Flags().StringVar(&description, "description", "", "label description")
	cmd.Flags().StringVar(&icon, "icon", "", "label icon, e.g. mdi:tag")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var name, color, description, icon string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the name or attributes of a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields labels.UpdateFields
			if cmd.Flags().Changed("name") {
				fields.Name = labels.SetTo(name)
			}

			var err error
			if fields.Color, err = optionalFlag(cmd, "color", color); err != nil {
				return err
			}
			if fields.Description, err = optionalFlag(cmd, "description", description); err != nil {
				return err
			}
			if fields.Icon, err = optionalFlag(cmd, "icon", icon); err != nil {
				return err
			}

			e, err := a.svc.Labels.Update(args[0], fields)
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.Flags().Bool("clear-color", false, "remove the color")
	cmd.Flags().Bool("clear-description", false, "remove the description")
	cmd.Flags().Bool("clear-icon", false, "remove the icon")
	cmd.MarkFlagsMutuallyExclusive("color", "clear-color")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("icon", "clear-icon")
	return cmd
}

// optionalFlag maps --<name> to SetTo(Some) and --clear-<name> to SetTo(None).
func optionalFlag(cmd *cobra.Command, name, value string) (labels.Field[labels.Optional], error) {
	if cmd.Flags().Changed(name) {
		return labels.SetTo(labels.Some(value)), nil
	}
	cleared, err := cmd.Flags().GetBool("clear-" + name)
	if err != nil {
		return labels.Field[labels.Optional]{}, err
	}
	if cleared {
		return labels.SetTo(labels.None()), nil
	}
	return labels.Unchanged[labels.Optional](), nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a label and drop all references to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Labels.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func printEntry(w io.Writer, e labels.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", e.ID)
	fmt.Fprintf(tw, "name:\t%s\n", e.Name)
	fmt.Fprintf(tw, "color:\t%s\n", orDash(e.Color))
	fmt.Fprintf(tw, "icon:\t%s\n", orDash(e.Icon))
	fmt.Fprintf(tw, "description:\t%s\n", orDash(e.Description))
	fmt.Fprintf(tw, "created:\t%s\n", e.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "modified:\t%s\n", e.ModifiedAt.Format(time.RFC3339))
	_ = tw.Flush()
}

func orDash(o labels.Optional) string {
	if v, ok := o.Get(); ok {
		return v
	}
	return "-"
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/pkg/registry"
)

func knownErrorCode(code string) bool {
	for _, c := range apperrors.KnownCodes() {
		if string(c) == code {
			return true
		}
	}
	return false
}

func newActivitiesCmd() *cobra.Command {
	var path string
	var validate bool

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List the activity registry, optionally validating it",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERROR CODES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", a.TaskType, a.Category, a.Timeout, a.Retries, len(a.ErrorCodes))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !validate {
				return nil
			}
			problems := reg.Validate(knownErrorCode)
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("registry has %d problem(s)", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry ok: %d activities\n", len(reg.Activities))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "registry", "configs/activity-registry.json", "path to the activity registry")
	cmd.Flags().BoolVar(&validate, "validate", false, "check ids, timeouts and error codes")
	return cmd
}

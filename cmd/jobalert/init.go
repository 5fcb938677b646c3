package main

import (
	"fmt"

	"jobalert/internal/config"

	"github.com/spf13/cobra"
)

func newInitCmd(s streams) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample companies file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			created, err := config.EnsureCompaniesFile(path)
			if err != nil {
				return &exitError{code: 1, err: fmt.Errorf("writing %s: %w", path, err)}
			}
			if created {
				fmt.Fprintf(s.out, "Wrote sample companies file to %s\n", path)
			} else {
				fmt.Fprintf(s.out, "%s already exists, left untouched\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "companies", "companies.yml", "where to write the companies file")
	return cmd
}

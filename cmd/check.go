package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/jqenum/internal/writeback"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var pkg string
	var jobs int
	cmd := &cobra.Command{
		Use:   "check [pattern...]",
		Short: "Fail if generated files are missing or out of date",
		Long: `check regenerates every output in memory and compares it with the file on
disk. Any data file change that alters the output, including its digest,
makes the output stale.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			gen, err := root.generator(pkg)
			if err != nil {
				return err
			}

			fs := osfs.New("/")
			writer := writeback.NewWriter(fs)
			var (
				mu    sync.Mutex
				stale []string
			)
			err = forEachInput(cmd.Context(), inputs, jobs, func(ctx context.Context, input string) error {
				files, err := generateOne(ctx, gen, fs, input, "")
				if err != nil {
					return err
				}
				paths, err := writer.Stale(files)
				if err != nil {
					return err
				}
				mu.Lock()
				stale = append(stale, paths...)
				mu.Unlock()
				return nil
			})
			if err != nil {
				return err
			}
			if len(stale) == 0 {
				return nil
			}
			slices.Sort(stale)
			for _, p := range stale {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return fmt.Errorf("%d generated file(s) out of date; run jqenum generate:\n  %s",
				len(stale), strings.Join(stale, "\n  "))
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "Package name used when generating")
	cmd.Flags().IntVar(&jobs, "jobs", 4, "Number of files checked concurrently")
	return cmd
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/jqenum/internal/generate"
	"github.com/agentic-research/jqenum/internal/writeback"
)

type generateOptions struct {
	pkg    string
	output string
	jobs   int
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate [pattern...]",
		Short: "Generate enum sources from invocation files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			if opts.output != "" && len(inputs) != 1 {
				return fmt.Errorf("-o requires exactly one input, got %d", len(inputs))
			}
			gen, err := root.generator(opts.pkg)
			if err != nil {
				return err
			}

			if opts.output == "-" {
				files, err := generateOne(cmd.Context(), gen, osfs.New("/"), inputs[0], "")
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(files[0].Content)
				return err
			}

			output := ""
			if opts.output != "" {
				if output, err = filepath.Abs(opts.output); err != nil {
					return err
				}
			}
			fs := osfs.New("/")
			writer := writeback.NewWriter(fs)
			return forEachInput(cmd.Context(), inputs, opts.jobs, func(ctx context.Context, input string) error {
				files, err := generateOne(ctx, gen, fs, input, output)
				if err != nil {
					return err
				}
				if err := writer.Write(files); err != nil {
					return err
				}
				for _, f := range files {
					if f.Delete {
						root.log.Debug("removed", zap.String("input", input), zap.String("output", f.Path))
						continue
					}
					root.log.Info("wrote", zap.String("input", input), zap.String("output", f.Path))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.pkg, "package", "", "Package name for generated files (default: declared, $GOPACKAGE, or directory name)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `Output source path for a single input; "-" prints to stdout`)
	cmd.Flags().IntVar(&opts.jobs, "jobs", 4, "Number of files generated concurrently")
	return cmd
}

// expandInputs resolves doublestar patterns into sorted absolute paths.
// A pattern matching nothing is an error.
func expandInputs(patterns []string) ([]string, error) {
	var inputs []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no invocation files match %q", pattern)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, abs)
		}
	}
	slices.Sort(inputs)
	return slices.Compact(inputs), nil
}

func generateOne(ctx context.Context, gen *generate.Generator, fs billy.Filesystem, input, output string) ([]writeback.File, error) {
	src, err := util.ReadFile(fs, input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("invocation file %s does not exist", input)
		}
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	return gen.Generate(ctx, input, src, output)
}

// forEachInput runs fn for every input with at most jobs in flight. Each
// file's pipeline is independent, so the first failure cancels the rest.
func forEachInput(ctx context.Context, inputs []string, jobs int, fn func(context.Context, string) error) error {
	if jobs < 1 {
		jobs = 1
	}
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(jobs)
	for _, input := range inputs {
		grp.Go(func() error {
			return fn(ctx, input)
		})
	}
	return grp.Wait()
}

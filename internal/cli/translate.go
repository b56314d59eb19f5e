package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// translateFlags holds flags for the translate command.
type translateFlags struct {
	outputDir string
	watermark string
	jobs      int
	noCache   bool
	refresh   bool
}

// translateJob is one label file of a batch.
type translateJob struct {
	path   string
	output string
	res    *pipeline.TranslateResult
	err    error
}

// translateCommand creates the translate command.
func (c *CLI) translateCommand() *cobra.Command {
	flags := translateFlags{}

	cmd := &cobra.Command{
		Use:   "translate <labels.txt>...",
		Short: "Compile label files into NGlyph compositions",
		Long: `Compile Audacity label files into NGlyph compositions.

Each label file is written as <name>.nglyph to the output directory. Several
files are translated concurrently; a failing file does not stop the others.`,
		Example: `  glyphtools translate song.txt
  glyphtools translate -o out/ --watermark credits.txt *.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output-dir") {
				flags.outputDir = c.Config.OutputDir
			}
			if !cmd.Flags().Changed("watermark") {
				flags.watermark = c.Config.Watermark
			}
			return c.runTranslate(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for the .nglyph files (default: config output_dir)")
	cmd.Flags().StringVar(&flags.watermark, "watermark", "", "watermark .txt file to seal the compositions with")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "concurrent translations (default: number of CPUs)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompile even when cached")

	return cmd
}

func (c *CLI) runTranslate(ctx context.Context, paths []string, flags translateFlags) error {
	if info, err := os.Stat(flags.outputDir); err != nil || !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "output directory does not exist: %q", flags.outputDir)
	}

	var wm *watermark.Watermark
	if flags.watermark != "" {
		var err error
		if wm, err = watermark.ReadFile(flags.watermark); err != nil {
			return err
		}
		if err := errors.ValidateWatermark(wm.Content); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	jobs := make([]*translateJob, len(paths))
	for i, p := range paths {
		jobs[i] = &translateJob{path: p}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Translating %d label file(s)...", len(jobs)))
	spinner.Start()

	var finished atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultJobs(flags.jobs))
	for _, job := range jobs {
		g.Go(func() error {
			job.res, job.output, job.err = c.translateOne(gctx, runner, job.path, flags, wm)
			spinner.SetMessage("Translated %d/%d label files", finished.Add(1), len(jobs))
			return gctx.Err()
		})
	}
	waitErr := g.Wait()
	spinner.Stop()
	if waitErr != nil {
		return waitErr
	}

	failed := 0
	for _, job := range jobs {
		if job.err != nil {
			failed++
			printError("%s: %s", job.path, errors.UserMessage(job.err))
			continue
		}
		printSuccess("Translated %s", filepath.Base(job.path))
		printWarnings(job.res.Warnings)
		printStats(job.res.Stats.Rows, job.res.Stats.Directives, job.res.CacheInfo.BuildHit)
		printFile(job.output)
	}
	prog.done(fmt.Sprintf("Translated %d of %d label files", len(jobs)-failed, len(jobs)))

	if failed > 0 {
		return fmt.Errorf("%d of %d label files failed", failed, len(jobs))
	}
	if len(jobs) == 1 {
		printNextStep("Next", fmt.Sprintf("%s write <audio.ogg> %s", appName, jobs[0].output))
	}
	return nil
}

// translateOne translates one label file. Every file gets its own salt.
func (c *CLI) translateOne(ctx context.Context, runner *pipeline.Runner, path string, flags translateFlags, wm *watermark.Watermark) (*pipeline.TranslateResult, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	opts := pipeline.TranslateOptions{
		Source:  data,
		Name:    filepath.Base(path),
		Refresh: flags.refresh,
		Logger:  c.Logger.With("file", filepath.Base(path)),
	}
	if wm != nil {
		if opts.Watermark, err = wm.Resalt(); err != nil {
			return nil, "", err
		}
	}

	res, err := runner.Translate(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	out := filepath.Join(flags.outputDir, res.OutputName())
	if err := nglyph.WriteFile(res.File, out); err != nil {
		return nil, "", err
	}
	return res, out, nil
}

// defaultJobs returns n when positive, otherwise the logical CPU count.
func defaultJobs(n int) int {
	if n > 0 {
		return n
	}
	if count, err := cpu.Counts(true); err == nil && count > 0 {
		return count
	}
	return 1
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dispatchgen/internal/diag"
	"dispatchgen/internal/dispatch"
	"dispatchgen/internal/genpipeline"
	"dispatchgen/internal/observ"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] file.xml...",
	Short: "Generate dispatch headers and sources",
	Long: `Generate reads each registry document and writes, under --dir:

  include/epoxy/<name>_generated.h
  include/epoxy/<name>_generated_vtable_defines.h
  src/<name>_generated_dispatch.c

Documents and the output directory default to the [generate] section of the
nearest dispatchgen.toml. Nothing is written unless every document succeeds.`,
	RunE: generateExecution,
}

func init() {
	generateCmd.Flags().String("dir", "", "destination directory (required unless set in dispatchgen.toml)")
	generateCmd.Flags().String("config", "", "path to dispatchgen.toml (default: search upward from the working directory)")
	generateCmd.Flags().Int("jobs", 0, "documents processed in parallel (0 = GOMAXPROCS)")
	generateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	generateCmd.Flags().Bool("emit-model", false, "also write <dir>/model/<name>.msgpack")
}

type generateFlags struct {
	dir       string
	config    string
	jobs      int
	ui        progressMode
	emitModel bool
	quiet     bool
	timings   bool
}

func readGenerateFlags(cmd *cobra.Command) (generateFlags, error) {
	var f generateFlags
	var err error
	if f.dir, err = cmd.Flags().GetString("dir"); err != nil {
		return f, err
	}
	if f.config, err = cmd.Flags().GetString("config"); err != nil {
		return f, err
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readProgressMode(uiValue); err != nil {
		return f, err
	}
	if f.emitModel, err = cmd.Flags().GetBool("emit-model"); err != nil {
		return f, err
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.jobs < 0 {
		return f, diag.Errorf(diag.CfgBadValue, "jobs", "--jobs must be >= 0, got %d", f.jobs)
	}
	return f, nil
}

// buildRequest merges flags, arguments and the manifest. Flags and
// arguments win over manifest values.
func buildRequest(flags generateFlags, args []string, manifest *projectManifest) *genpipeline.Request {
	req := &genpipeline.Request{
		Files:     args,
		OutDir:    flags.dir,
		Options:   dispatch.DefaultOptions(),
		Jobs:      flags.jobs,
		EmitModel: flags.emitModel,
	}
	if manifest == nil {
		return req
	}
	cfg := manifest.Config
	req.Options = cfg.options()
	if len(req.Files) == 0 {
		for _, f := range cfg.Generate.Files {
			req.Files = append(req.Files, manifest.resolve(f))
		}
	}
	if req.OutDir == "" {
		req.OutDir = manifest.resolve(cfg.Generate.Dir)
	}
	if req.Jobs == 0 {
		req.Jobs = cfg.Generate.Jobs
	}
	return req
}

func generateExecution(cmd *cobra.Command, args []string) error {
	timer := observ.NewTimer()
	flags, err := readGenerateFlags(cmd)
	if err != nil {
		return err
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfgPhase := timer.Begin("config")
	manifest, found, err := loadProjectManifest(".", flags.config)
	if err != nil {
		return err
	}
	note := "defaults"
	if found {
		note = manifest.Path
	}
	timer.End(cfgPhase, note)

	req := buildRequest(flags, args, manifest)
	ctx := cmd.Context()

	var res genpipeline.Result
	if useProgressView(flags.ui, flags.quiet, len(req.Files)) {
		res, err = runGenerateWithUI(ctx, "dispatchgen", req)
	} else {
		res, err = genpipeline.Generate(ctx, req)
	}
	if err != nil {
		dumpRing(cmd, tracer)
		return err
	}

	out := cmd.OutOrStdout()
	if !flags.quiet {
		printSummary(out, res)
	}
	if flags.timings {
		for _, stage := range genpipeline.Stages {
			if res.Timings.Has(stage) {
				timer.Record(string(stage), res.Timings.Duration(stage), "")
			}
		}
		fmt.Fprint(out, timer.Summary())
	}
	return nil
}

func printSummary(out io.Writer, res genpipeline.Result) {
	for _, t := range res.Targets {
		fmt.Fprintf(out, "%s %s: %d functions, %d resolvers, %d providers\n",
			summaryColor.Sprint("generated"), t.Name, t.Functions, t.Roots, t.Providers)
	}
	if len(res.Written) > 0 {
		fmt.Fprintf(out, "wrote %d files\n", len(res.Written))
	}
}

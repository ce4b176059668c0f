package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BourgeoisBear/rasterm"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codonvm/internal/config"
	"codonvm/internal/genome/lexer"
	"codonvm/internal/log"
	"codonvm/internal/render"
	"codonvm/internal/render/raster"
	"codonvm/internal/store"
	"codonvm/internal/trace"
	"codonvm/internal/tui"
	"codonvm/internal/vm"
)

// DefaultStorePath is used when neither the flag nor the config names a database
const DefaultStorePath = "codonvm.db"

// terminal cells are assumed to be this many pixels wide when sizing inline images
const cellPixels = 8

// result is everything one execution produced
type result struct {
	path     string
	program  *lexer.Program
	renderer render.Renderer
	states   []vm.State
	err      error // the fault that ended the run, if any
}

// execute runs a genome on a fresh machine. A VM fault is kept in the
// result; only failures to set the run up are returned.
func (a *app) execute(cmd *cobra.Command, path string, quiet bool) (*result, error) {
	prog, err := a.loadProgram(cmd, path, quiet)
	if err != nil {
		return nil, err
	}

	var r render.Renderer
	if a.cfg.Output.Format == config.FormatCalls {
		r = render.NewRecorder(float64(a.cfg.Canvas.Width), float64(a.cfg.Canvas.Height))
	} else {
		r, err = raster.New(a.cfg.RasterOptions())
		if err != nil {
			return nil, err
		}
	}

	machine, err := vm.New(r, a.cfg.VMSettings())
	if err != nil {
		return nil, err
	}
	states, runErr := machine.Run(prog.Tokens)
	log.Info("run finished", "genome", path, "status", machine.Status(), "snapshots", len(states), "instructions", machine.InstructionCount())

	return &result{
		path:     path,
		program:  prog,
		renderer: r,
		states:   states,
		err:      runErr,
	}, nil
}

// applyRunFlags folds the per-run overrides into the loaded configuration
func (a *app) applyRunFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("limit") {
		a.cfg.VM.InstructionLimit, _ = flags.GetInt("limit")
	}
	if flags.Changed("seed") {
		a.cfg.VM.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("format") {
		a.cfg.Output.Format, _ = flags.GetString("format")
	}
	return a.cfg.Validate()
}

func (a *app) storePath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	if a.cfg.Store.Path != "" {
		return a.cfg.Store.Path
	}
	return DefaultStorePath
}

func (a *app) openStore(cmd *cobra.Command) (*store.Store, error) {
	return store.Open(contextOf(cmd), a.storePath(cmd))
}

func addVMFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", vm.DefaultInstructionLimit, "maximum metered instructions")
	cmd.Flags().Int64("seed", vm.DefaultSeed, "noise seed")
}

func (a *app) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run GENOME",
		Short: "Execute a genome and export the drawing",
		Long: "Execute a genome and export the drawing. Use - to read the genome from standard input.\n" +
			"Without -o the image goes to standard output, inline when that is a terminal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyRunFlags(cmd); err != nil {
				return err
			}
			res, err := a.execute(cmd, args[0], false)
			if err != nil {
				return err
			}
			if err := a.export(cmd, res); err != nil {
				return err
			}
			if err := a.record(cmd, res); err != nil {
				return err
			}
			return res.err
		},
	}

	addVMFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "write the drawing to this file")
	cmd.Flags().StringP("format", "f", string(raster.FormatPNG), "output format: png, sixel, sixel-plan9, iterm or calls")
	cmd.Flags().String("trace", "", "write the CBOR snapshot trace to this file")
	cmd.Flags().Bool("store", false, "archive the run in the run database")
	addStoreFlag(cmd)
	return cmd
}

// export writes the renderer's output to -o or standard output
func (a *app) export(cmd *cobra.Command, res *result) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := res.renderer.Export(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to export %s: %w", output, err)
		}
		return f.Close()
	}

	out := cmd.OutOrStdout()
	if canvas, ok := res.renderer.(*raster.Canvas); ok {
		inlineImage(cmd, canvas, out)
	}
	return res.renderer.Export(out)
}

// inlineImage switches a PNG export to a terminal graphics protocol when
// standard output is a terminal, and fits it to the terminal width
func inlineImage(cmd *cobra.Command, canvas *raster.Canvas, out io.Writer) {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return
	}
	if !cmd.Flags().Changed("format") {
		format := raster.FormatSixel
		if rasterm.IsItermCapable() {
			format = raster.FormatIterm
		}
		canvas.SetFormat(format)
	}
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
		if width := cols * cellPixels; width < canvas.Image().Bounds().Dx() {
			canvas.SetExportWidth(width)
		}
	}
}

// record writes the trace file and archives the run when asked to
func (a *app) record(cmd *cobra.Command, res *result) error {
	data, err := trace.Encode(res.states)
	if err != nil {
		return err
	}
	fingerprint := trace.FingerprintBytes(data)

	status := "halted"
	if res.err != nil {
		status = "faulted"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s after %d snapshots, fingerprint %s\n",
		res.path, status, len(res.states), fingerprint)

	if path, _ := cmd.Flags().GetString("trace"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}

	if save, _ := cmd.Flags().GetBool("store"); !save {
		return nil
	}
	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	run := store.Run{
		Genome:      genomeName(res.path),
		Mode:        string(res.program.Mode),
		Tokens:      len(res.program.Tokens),
		Snapshots:   len(res.states),
		Fingerprint: fingerprint,
		Trace:       data,
	}
	if n := len(res.states); n > 0 {
		run.Instructions = res.states[n-1].InstructionCount
	}
	if res.err != nil {
		run.Error = res.err.Error()
	}
	id, err := s.SaveRun(contextOf(cmd), run)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "stored as run %d\n", id)
	return nil
}

func genomeName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return filepath.Base(path)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) newScrubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrub [GENOME]",
		Short: "Step through the snapshots of a run",
		Long:  "Execute a genome, or load an archived run with --run, and browse its snapshots in a terminal UI.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run")
			if (runID == "") == (len(args) == 0) {
				return fmt.Errorf("give either a genome or --run")
			}

			theme, err := tui.ThemeByName(a.cfg.TUI.Theme)
			if err != nil {
				return err
			}

			var scrubber *tui.Scrubber
			if runID != "" {
				s, err := a.openStore(cmd)
				if err != nil {
					return err
				}
				defer s.Close()
				run, states, err := loadRun(contextOf(cmd), s, runID)
				if err != nil {
					return err
				}
				var fault error
				if run.Failed() {
					fault = errors.New(run.Error)
				}
				scrubber = tui.NewScrubber(fmt.Sprintf("run %d %s", run.ID, run.Genome), states, fault, theme)
			} else {
				if err := a.applyRunFlags(cmd); err != nil {
					return err
				}
				a.cfg.Output.Format = config.FormatCalls
				res, err := a.execute(cmd, args[0], true)
				if err != nil {
					return err
				}
				scrubber = tui.NewScrubber(genomeName(res.path), res.states, res.err, theme)
			}
			return scrubber.Run()
		},
	}

	addVMFlags(cmd)
	cmd.Flags().String("run", "", "archived run ID to load instead of executing")
	addStoreFlag(cmd)
	return cmd
}

// loadRun fetches an archived run and decodes its trace
func loadRun(ctx context.Context, s *store.Store, idText string) (*store.Run, []vm.State, error) {
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid run ID %q", idText)
	}
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	states, err := trace.Decode(run.Trace)
	if err != nil {
		return nil, nil, fmt.Errorf("run %d: %w", id, err)
	}
	return run, states, nil
}

// Command leonie assembles and runs Leonie scripts.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kusterer/leonie/vm"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leonie",
		Short: "Assemble and run Leonie bytecode scripts",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	root.AddCommand(newRunCmd(), newDebugCmd())
	return root
}

func setupLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	if !isTerminal(os.Stderr) {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
		return
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger().Level(level)
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.leo>",
		Short: "Assemble and run a script's main command handler to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, closeFn, err := prepareFromFile(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			ctx.Run()
			if ctx.Err != nil {
				log.Error().Err(ctx.Err).Msg("script stopped with an error")
				return ctx.Err
			}
			log.Debug().Uint64("steps", ctx.StepCount).Msg("script finished")
			return nil
		},
	}
}

func newDebugCmd() *cobra.Command {
	var breakAt []int
	cmd := &cobra.Command{
		Use:   "debug <file.leo>",
		Short: "Single-step a script interactively, with optional breakpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, closeFn, err := prepareFromFile(args[0])
			if err != nil {
				return err
			}
			defer closeFn()
			return runDebugRepl(ctx, breakAt)
		},
	}
	cmd.Flags().IntSliceVar(&breakAt, "break", nil, "step counts to break at")
	return cmd
}

func prepareFromFile(path string) (*vm.Context, func(), error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	mod, err := vm.Assemble(string(source))
	if err != nil {
		return nil, nil, fmt.Errorf("assembling %s: %w", path, err)
	}

	group := vm.NewGroup()
	script := vm.NewScript(1, 1)
	script.Strings = mod.Strings
	idx := script.AddCommandHandlerNamed("main")
	handler := script.Command(idx)
	handler.Instructions = mod.Instructions

	ctx := vm.NewContext(group)
	group.Release()
	ctx.Stdout = bufio.NewWriter(os.Stdout)

	console := vm.NewConsoleHost(os.Stdin)
	ctx.Prompt = console.AskLine

	ctx.PrepareHandler(script, handler)

	return ctx, func() {
		ctx.Stdout.(*bufio.Writer).Flush()
		console.Close()
		ctx.Close()
	}, nil
}

// runDebugRepl drives Step one instruction at a time, the Go analogue of
// the teacher's RunProgramDebugMode REPL: n/next, r/run, b/break <n>.
func runDebugRepl(ctx *vm.Context, breakAt []int) error {
	breakpoints := map[uint64]bool{}
	for _, b := range breakAt {
		breakpoints[uint64(b)] = true
	}

	running := false
	reader := bufio.NewScanner(os.Stdin)
	for ctx.KeepRunning {
		if !running || breakpoints[ctx.StepCount] {
			running = false
			fmt.Printf("step %d> ", ctx.StepCount)
			if !reader.Scan() {
				break
			}
			switch cmd := strings.TrimSpace(reader.Text()); {
			case cmd == "n" || cmd == "next" || cmd == "":
				ctx.Step()
				continue
			case cmd == "r" || cmd == "run":
				running = true
			case strings.HasPrefix(cmd, "b ") || strings.HasPrefix(cmd, "break "):
				fields := strings.Fields(cmd)
				if len(fields) == 2 {
					if n, err := strconv.Atoi(fields[1]); err == nil {
						breakpoints[uint64(n)] = true
					}
				}
				continue
			default:
				fmt.Println("commands: n[ext], r[un], b[reak] <step>")
				continue
			}
		}
		ctx.Step()
	}
	if ctx.Err != nil {
		log.Error().Err(ctx.Err).Msg("script stopped with an error")
		return ctx.Err
	}
	return nil
}

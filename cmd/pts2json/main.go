package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mattetti/pt-sessions/internal/config"
	"github.com/mattetti/pt-sessions/internal/converter"
	"github.com/mattetti/pt-sessions/internal/pts"
)

const VERSION = "1.0.0"

func main() {
	flag.Usage = printUsage
	opts, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrNoInput) {
			fmt.Println("Error: Input path is required. Use -i flag or set input in the -config file.")
			printUsage()
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	// Display version if requested
	if opts.Version {
		fmt.Printf("pts2json version %s\n", VERSION)
		os.Exit(0)
	}

	logger, err := newLogger(opts.Debug)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	conv := converter.NewConverter(logger, converter.Options{
		ErrorSave:  opts.ErrorSave,
		Unxor:      opts.Unxor,
		Workers:    opts.Workers,
		AudioDir:   opts.AudioDir,
		GenMissing: opts.GenMissing,
		MaxDepth:   opts.MaxDepth(),
		MaxBlocks:  opts.MaxBlocks(),
	})

	inputInfo, err := os.Stat(opts.Input)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	sugar.Debugw("options",
		"input", opts.Input,
		"output", opts.Output,
		"config", opts.ConfigPath,
		"workers", opts.Workers,
		"unxor", opts.Unxor,
		"errorSave", opts.ErrorSave,
		"genMissing", opts.GenMissing,
	)

	if inputInfo.IsDir() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		summary, err := conv.ProcessDirectory(ctx, opts.Input, opts.Output)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Converted %d/%d sessions (%d failed). Duration: %.2fs\n",
			summary.Converted, summary.Found, summary.Failed, summary.Elapsed.Seconds())
		return
	}

	if !pts.IsSessionFilename(opts.Input) {
		fmt.Println("Input file must be a .pts, .ptx or .ptf session.")
		os.Exit(1)
	}
	name, err := conv.ConvertFile(opts.Input, opts.Output)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Converted %s to %s\n", filepath.Base(opts.Input), filepath.Join(opts.Output, name))
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func printUsage() {
	fmt.Println("Usage: pts2json -i <input> [options]")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  pts2json -i /path/to/sessions/            # Convert every session in a directory tree")
	fmt.Println("  pts2json -i Song.ptx -o .                 # Convert a single session")
	fmt.Println("  pts2json -i Song.ptx -audio-dir \"Audio Files\" # Also probe the referenced audio files")
	fmt.Println("  pts2json -i Song.ptx -gen-missing         # Write silent stand-ins for missing audio files")
	fmt.Println("  pts2json -i Song.ptx -unxor               # Write the decrypted bytes to Song.bin")
	fmt.Println("  pts2json -config pts2json.hcl -d          # Read options from an HCL file, debug logging")
}

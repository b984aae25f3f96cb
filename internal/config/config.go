// Package config resolves pts2json options from command line flags and an
// optional HCL file. Flags that are set explicitly win over file values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// DefaultOutput is used when neither the flags nor the file name one.
const DefaultOutput = "Sessions JSON"

// ErrNoInput is returned when no input path was given.
var ErrNoInput = errors.New("input path is required")

// Options is the resolved configuration of a run.
type Options struct {
	Input      string  `hcl:"input,optional"`
	Output     string  `hcl:"output,optional"`
	Workers    int     `hcl:"workers,optional"`
	AudioDir   string  `hcl:"audio_dir,optional"`
	Unxor      bool    `hcl:"unxor,optional"`
	Debug      bool    `hcl:"debug,optional"`
	ErrorSave  bool    `hcl:"error_save,optional"`
	GenMissing bool    `hcl:"gen_missing,optional"`
	Limits     *Limits `hcl:"limits,block"`

	ConfigPath string
	Version    bool
}

// Limits bound the block tree rebuilt for each session.
type Limits struct {
	MaxDepth  int `hcl:"max_depth,optional"`
	MaxBlocks int `hcl:"max_blocks,optional"`
}

// Default returns the options used when nothing else is configured.
func Default() Options {
	return Options{
		Output:  DefaultOutput,
		Workers: runtime.NumCPU(),
	}
}

// LoadFile decodes an HCL config file on top of the defaults. String
// values may reference ${home} and ${cwd}.
func LoadFile(path string) (Options, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Options{}, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	opts := Default()
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &opts); diags.HasErrors() {
		return Options{}, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}
	opts.ConfigPath = path
	return opts, nil
}

func evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	if home, err := os.UserHomeDir(); err == nil {
		vars["home"] = cty.StringVal(home)
	}
	if cwd, err := os.Getwd(); err == nil {
		vars["cwd"] = cty.StringVal(cwd)
	}
	return &hcl.EvalContext{Variables: vars}
}

// Load registers the pts2json flags on fs, parses args and resolves the
// final options.
func Load(fs *flag.FlagSet, args []string) (Options, error) {
	var cli Options
	cli.Limits = &Limits{}
	fs.StringVar(&cli.Input, "i", "", "Input session file or directory (required)")
	fs.StringVar(&cli.Output, "o", "", fmt.Sprintf("Output directory (defaults to %q)", DefaultOutput))
	fs.StringVar(&cli.ConfigPath, "config", "", "Path to an HCL config file")
	fs.IntVar(&cli.Workers, "workers", 0, "Number of sessions decoded in parallel (defaults to the CPU count)")
	fs.StringVar(&cli.AudioDir, "audio-dir", "", "Directory holding the session's audio files, relative to the session; enables probing")
	fs.BoolVar(&cli.Unxor, "unxor", false, "Write the decrypted session bytes instead of JSON")
	fs.BoolVar(&cli.Debug, "d", false, "Debug mode")
	fs.BoolVar(&cli.ErrorSave, "e", false, "Save sessions that fail to decode to output/errors/")
	fs.BoolVar(&cli.GenMissing, "gen-missing", false, "Write silent placeholders for referenced audio files that are missing")
	fs.IntVar(&cli.Limits.MaxDepth, "max-depth", 0, "Maximum block nesting followed")
	fs.IntVar(&cli.Limits.MaxBlocks, "max-blocks", 0, "Maximum number of blocks kept per session")
	fs.BoolVar(&cli.Version, "version", false, "Display version information")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	opts := Default()
	if cli.ConfigPath != "" {
		file, err := LoadFile(cli.ConfigPath)
		if err != nil {
			return Options{}, err
		}
		opts = file
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			opts.Input = cli.Input
		case "o":
			opts.Output = cli.Output
		case "workers":
			opts.Workers = cli.Workers
		case "audio-dir":
			opts.AudioDir = cli.AudioDir
		case "unxor":
			opts.Unxor = cli.Unxor
		case "d":
			opts.Debug = cli.Debug
		case "e":
			opts.ErrorSave = cli.ErrorSave
		case "gen-missing":
			opts.GenMissing = cli.GenMissing
		case "max-depth":
			opts.limits().MaxDepth = cli.Limits.MaxDepth
		case "max-blocks":
			opts.limits().MaxBlocks = cli.Limits.MaxBlocks
		case "version":
			opts.Version = cli.Version
		}
	})

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o *Options) limits() *Limits {
	if o.Limits == nil {
		o.Limits = &Limits{}
	}
	return o.Limits
}

// MaxDepth returns the configured depth limit, zero meaning the default.
func (o Options) MaxDepth() int {
	if o.Limits == nil {
		return 0
	}
	return o.Limits.MaxDepth
}

// MaxBlocks returns the configured block limit, zero meaning the default.
func (o Options) MaxBlocks() int {
	if o.Limits == nil {
		return 0
	}
	return o.Limits.MaxBlocks
}

// Validate fills derived defaults and rejects unusable combinations.
func (o *Options) Validate() error {
	if o.Version {
		return nil
	}
	if o.Input == "" {
		return ErrNoInput
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return nil
}

package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mattetti/pt-sessions/internal/pts"
	"github.com/mattetti/pt-sessions/internal/wav"
)

// Options represents the conversion options
type Options struct {
	NoWrite    bool
	ErrorSave  bool
	Unxor      bool   // Write decrypted session bytes instead of JSON
	Workers    int    // Sessions decoded in parallel by ProcessDirectory
	AudioDir   string // Audio files location, relative to each session unless absolute
	GenMissing bool   // Write silent placeholders for referenced audio that is missing
	MaxDepth   int
	MaxBlocks  int
}

// Converter handles the conversion process
type Converter struct {
	options Options
	sugar   *zap.SugaredLogger
	parser  *pts.Parser
	prober  *wav.Prober
	encoder *wav.Encoder
	names   *outputNames
}

// Document is the JSON written for each session.
type Document struct {
	Source    string          `json:"source"`
	Session   *pts.Session    `json:"session"`
	Audio     []wav.AudioInfo `json:"audio,omitempty"`
	Generated []string        `json:"generated,omitempty"`
}

// Summary reports the outcome of a directory run.
type Summary struct {
	Found     int
	Converted int
	Failed    int
	Elapsed   time.Duration
}

// NewConverter creates a new converter
func NewConverter(logger *zap.Logger, options Options) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}
	return &Converter{
		options: options,
		sugar:   logger.Sugar(),
		parser: pts.NewParser(logger,
			pts.WithMaxDepth(options.MaxDepth),
			pts.WithMaxBlocks(options.MaxBlocks),
		),
		prober:  wav.NewProber(logger),
		encoder: wav.NewEncoder(logger, options.NoWrite),
		names:   newOutputNames(),
	}
}

// ConvertFile decodes a single session and writes it to outputDir. The
// output is named after the session, or after the input file when another
// input already took that name. It returns the name of the written file.
func (c *Converter) ConvertFile(inputFile, outputDir string) (string, error) {
	if c.options.Unxor {
		return c.DecryptFile(inputFile, outputDir)
	}
	errorDir := filepath.Join(outputDir, "errors")

	session, err := c.parser.ReadFile(inputFile)
	if err != nil {
		c.sugar.Errorw("session read error", "file", filepath.Base(inputFile), "error", err)
		if c.options.ErrorSave {
			c.saveErrorFile(inputFile, errorDir)
		}
		return "", err
	}

	doc := Document{Source: filepath.Base(inputFile), Session: session}
	if c.options.GenMissing {
		doc.Generated, err = c.encoder.GenerateMissing(c.audioDir(inputFile), session.Header.SampleRate, session.AudioFiles)
		if err != nil {
			c.sugar.Warnw("placeholder generation incomplete", "file", filepath.Base(inputFile), "error", err)
		}
	}
	if c.options.AudioDir != "" {
		doc.Audio = c.prober.Probe(c.audioDir(inputFile), session.Header.SampleRate, session.AudioFiles)
	}

	outputFilename := c.names.reserve(outputDir, ".json", inputFile,
		baseName(session.Header.SessionName),
		baseName(filepath.Base(inputFile)),
	)
	if c.options.NoWrite {
		return outputFilename, nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, outputFilename), append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	c.sugar.Debugw("session written", "file", outputFilename, "tracks", len(session.AudioTracks)+len(session.MidiTracks))
	return outputFilename, nil
}

// DecryptFile writes the de-obfuscated bytes of a session to
// <outputDir>/<name>.bin without decoding its content.
func (c *Converter) DecryptFile(inputFile, outputDir string) (string, error) {
	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	decoded, err := pts.Decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(inputFile), err)
	}

	outputFilename := c.names.reserve(outputDir, ".bin", inputFile, baseName(filepath.Base(inputFile)))
	if c.options.NoWrite {
		return outputFilename, nil
	}
	if err := os.WriteFile(filepath.Join(outputDir, outputFilename), decoded, 0644); err != nil {
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	return outputFilename, nil
}

// ProcessDirectory converts every session file under inputDir, mirroring
// its sub-directories under outputDir. A file that fails to convert is
// counted and logged; only cancellation aborts the run.
func (c *Converter) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	c.sugar.Infow("scanning", "dir", inputDir)

	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && pts.IsSessionFilename(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("error scanning directory: %w", err)
	}
	c.sugar.Infow("planning", "sessions", len(files), "workers", c.options.Workers)

	// Every output directory exists before the first conversion starts.
	outDirs := make([]string, len(files))
	for i, file := range files {
		relPath, err := filepath.Rel(inputDir, filepath.Dir(file))
		if err != nil {
			return Summary{}, fmt.Errorf("error calculating relative path: %w", err)
		}
		outDirs[i] = filepath.Join(outputDir, relPath)
		if !c.options.NoWrite {
			if err := os.MkdirAll(outDirs[i], 0755); err != nil {
				return Summary{}, fmt.Errorf("error creating output directory: %w", err)
			}
		}
	}

	startTime := time.Now()
	var converted, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.options.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := c.ConvertFile(file, outDirs[i]); err != nil {
				failed.Add(1)
				c.sugar.Warnw("conversion failed", "file", file, "error", err)
				return nil
			}
			converted.Add(1)
			return nil
		})
	}
	err = g.Wait()

	summary := Summary{
		Found:     len(files),
		Converted: int(converted.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(startTime),
	}
	c.sugar.Infow("done",
		"converted", summary.Converted,
		"failed", summary.Failed,
		"found", summary.Found,
		"duration", summary.Elapsed,
	)
	return summary, err
}

func (c *Converter) audioDir(inputFile string) string {
	if filepath.IsAbs(c.options.AudioDir) {
		return c.options.AudioDir
	}
	return filepath.Join(filepath.Dir(inputFile), c.options.AudioDir)
}

var unsafeChars = regexp.MustCompile(`[^0-9a-zA-Z\.,%\-_#]+`)

// cleanFilename removes invalid characters from a filename (Windows-safe)
func cleanFilename(filename string) string {
	return unsafeChars.ReplaceAllString(filename, "_")
}

// saveErrorFile saves a copy of a file that caused an error
func (c *Converter) saveErrorFile(inputFile, errorDir string) {
	if !c.options.ErrorSave || c.options.NoWrite {
		return
	}

	if err := os.MkdirAll(errorDir, 0755); err != nil {
		c.sugar.Warnw("error creating error directory", "error", err)
		return
	}

	inFile, err := os.Open(inputFile)
	if err != nil {
		c.sugar.Warnw("error opening file for error copy", "error", err)
		return
	}
	defer inFile.Close()

	outFile, err := os.Create(filepath.Join(errorDir, filepath.Base(inputFile)))
	if err != nil {
		c.sugar.Warnw("error creating error file", "error", err)
		return
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, inFile); err != nil {
		c.sugar.Warnw("error copying file content", "error", err)
	}
}

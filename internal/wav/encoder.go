package wav

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/mattetti/pt-sessions/internal/pts"
)

const (
	placeholderBitDepth = 16
	placeholderChannels = 1
	defaultSampleRate   = 48000

	writeChunkFrames = 1 << 16

	// maxPlaceholderSeconds caps the length of a single placeholder.
	maxPlaceholderSeconds = 3600
)

// frameEncoder is the part of the go-audio encoders used for placeholders.
type frameEncoder interface {
	Write(buf *audio.IntBuffer) error
	Close() error
}

// Encoder writes silent placeholders for audio files that a session
// references but that are missing on disk.
type Encoder struct {
	sugar   *zap.SugaredLogger
	noWrite bool
}

// NewEncoder creates a placeholder encoder. With noWrite set it only
// reports what it would create.
func NewEncoder(logger *zap.Logger, noWrite bool) *Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{sugar: logger.Sugar(), noWrite: noWrite}
}

// GenerateMissing creates a silent file under dir for every reference that
// does not exist yet. Lengths are sample frames at the session rate. It
// returns the paths created; failures for single files are joined into the
// returned error and do not stop the others.
func (e *Encoder) GenerateMissing(dir string, sessionRate int32, refs []pts.AudioRef) ([]string, error) {
	sampleRate := int(sessionRate)
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}

	var (
		written []string
		errs    []error
	)
	for _, ref := range refs {
		path := filepath.Join(dir, filepath.FromSlash(ref.Filename))
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("error checking %s: %w", ref.Filename, err))
			continue
		}

		if !e.noWrite {
			if err := e.WriteSilence(path, sampleRate, ref.Length); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		e.sugar.Infow("placeholder created", "path", path, "frames", ref.Length, "sampleRate", sampleRate)
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

// WriteSilence writes a mono 16-bit silent WAV or AIFF file of the given
// number of frames, picking the container from the extension.
func (e *Encoder) WriteSilence(path string, sampleRate int, frames int64) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".aif" && ext != ".aiff" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}

	frames = max(frames, 0)
	if limit := int64(sampleRate) * maxPlaceholderSeconds; frames > limit {
		e.sugar.Warnw("placeholder length capped", "path", path, "frames", frames, "limit", limit)
		frames = limit
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating audio directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating placeholder file: %w", err)
	}
	defer file.Close()

	var enc frameEncoder
	if ext == ".wav" {
		enc = gowav.NewEncoder(file, sampleRate, placeholderBitDepth, placeholderChannels, 1)
	} else {
		enc = aiff.NewEncoder(file, sampleRate, placeholderBitDepth, placeholderChannels)
	}

	buf := &audio.IntBuffer{
		Data:           make([]int, min(frames, writeChunkFrames)),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: placeholderChannels},
		SourceBitDepth: placeholderBitDepth,
	}
	// The encoders write their header on the first Write, so an empty file
	// still gets one call.
	for remaining := frames; ; {
		n := min(remaining, int64(len(buf.Data)))
		buf.Data = buf.Data[:n]
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("error writing placeholder audio: %w", err)
		}
		if remaining -= n; remaining <= 0 {
			break
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error finalizing placeholder file: %w", err)
	}
	return nil
}

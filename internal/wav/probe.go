package wav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	gowav "github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/mattetti/pt-sessions/internal/pts"
)

// ErrUnsupportedFile is returned for files that are neither WAV nor AIFF.
var ErrUnsupportedFile = errors.New("unsupported audio file")

// Prober reads the headers of the audio files a session references.
type Prober struct {
	sugar *zap.SugaredLogger
}

// NewProber creates a prober. A nil logger discards output.
func NewProber(logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{sugar: logger.Sugar()}
}

// Probe looks up every reference under dir. Files that are missing or
// unreadable are reported through AudioInfo.Error rather than failing the
// whole probe.
func (p *Prober) Probe(dir string, sessionRate int32, refs []pts.AudioRef) []AudioInfo {
	infos := make([]AudioInfo, 0, len(refs))
	for _, ref := range refs {
		path := filepath.Join(dir, filepath.FromSlash(ref.Filename))
		info, err := p.ProbeFile(path)
		info.Filename = ref.Filename
		info.Path = path
		if err != nil {
			p.sugar.Debugw("audio probe failed", "path", path, "error", err)
			info.Error = err.Error()
		} else if sessionRate > 0 && info.SampleRate != int(sessionRate) {
			info.RateMismatch = true
			p.sugar.Warnw("sample rate mismatch", "path", path, "file", info.SampleRate, "session", sessionRate)
		}
		infos = append(infos, info)
	}
	return infos
}

// ProbeFile reads the format of a single WAV or AIFF file.
func (p *Prober) ProbeFile(path string) (AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, fmt.Errorf("error opening audio file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return probeWAV(f)
	case ".aif", ".aiff":
		return probeAIFF(f)
	default:
		return AudioInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}
}

func probeWAV(f *os.File) (AudioInfo, error) {
	d := gowav.NewDecoder(f)
	if !d.IsValidFile() {
		return AudioInfo{}, fmt.Errorf("%w: invalid WAV header", ErrUnsupportedFile)
	}
	info := AudioInfo{
		Format:     "wav",
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	dur, err := d.Duration()
	if err != nil {
		return info, fmt.Errorf("error reading WAV duration: %w", err)
	}
	info.Seconds = dur.Seconds()
	return info, nil
}

func probeAIFF(f *os.File) (AudioInfo, error) {
	d := aiff.NewDecoder(f)
	if !d.IsValidFile() {
		return AudioInfo{}, fmt.Errorf("%w: invalid AIFF header", ErrUnsupportedFile)
	}
	info := AudioInfo{
		Format:     "aiff",
		SampleRate: d.SampleRate,
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	dur, err := d.Duration()
	if err != nil {
		return info, fmt.Errorf("error reading AIFF duration: %w", err)
	}
	info.Seconds = dur.Seconds()
	return info, nil
}

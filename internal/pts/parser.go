// Package pts decodes obfuscated Pro Tools session files into tracks,
// regions, audio file references and MIDI notes.
package pts

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Parser handles decoding session files.
type Parser struct {
	sugar *zap.SugaredLogger
	tree  TreeOptions
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth bounds the nesting the tree builder follows.
func WithMaxDepth(n int) Option {
	return func(p *Parser) { p.tree.MaxDepth = n }
}

// WithMaxBlocks bounds the number of blocks kept for one file.
func WithMaxBlocks(n int) Option {
	return func(p *Parser) { p.tree.MaxBlocks = n }
}

// NewParser creates a session parser. A nil logger discards output.
func NewParser(logger *zap.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{sugar: logger.Sugar()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadFile reads and parses a session file.
func (p *Parser) ReadFile(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	session, err := p.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return session, nil
}

// Parse decrypts and decodes a complete raw session file.
func (p *Parser) Parse(raw []byte) (*Session, error) {
	decoded, err := Decrypt(raw)
	if err != nil {
		return nil, err
	}
	p.sugar.Debugw("decrypted", "bytes", len(decoded), "cipher", fmt.Sprintf("0x%02x", raw[cipherTypeOffset]))
	return p.ParseDecoded(decoded)
}

// ParseDecoded decodes an already decrypted buffer.
func (p *Parser) ParseDecoded(buf []byte) (*Session, error) {
	if err := checkFormat(buf); err != nil {
		return nil, err
	}
	bigEndian := IsBigEndian(buf)
	r := NewReader(buf, bigEndian)

	version, err := readVersion(r, buf)
	if err != nil {
		return nil, err
	}
	p.sugar.Debugw("session format", "version", version, "bigEndian", bigEndian)

	forest := BuildForest(buf, bigEndian, p.tree)
	for _, w := range forest.Warnings {
		p.sugar.Warnw("block tree truncated", "offset", w.Offset, "reason", w.Reason)
	}
	p.sugar.Debugw("block tree built", "blocks", len(forest.Blocks), "roots", len(forest.Roots))

	x := newExtractor(r, NewIndex(forest), p.sugar)
	header := x.header()
	header.Version = version

	session := assemble(header,
		x.audioTracks(),
		x.midiTracks(),
		x.audioFiles(),
		x.regions(AudioRegion),
		x.regions(MidiRegion),
		x.regions(CompoundRegion),
		x.midiChunks(),
		forest.Warnings,
	)
	p.sugar.Infow("session decoded",
		"name", session.Header.SessionName,
		"audioTracks", len(session.AudioTracks),
		"midiTracks", len(session.MidiTracks),
		"audioFiles", len(session.AudioFiles),
	)
	return session, nil
}

// assemble merges the extracted entities into a Session.
func assemble(header HeaderInfo, audioTracks, midiTracks []Track, files []AudioRef,
	audioRegions, midiRegions, compoundRegions []Region, chunks [][]MidiNote, warnings []Warning) *Session {

	attachNotes(midiRegions, chunks)
	associate(audioTracks, audioRegions, compoundRegions)
	associate(midiTracks, midiRegions, compoundRegions)

	s := &Session{
		Header:          header,
		AudioTracks:     audioTracks,
		MidiTracks:      midiTracks,
		AudioFiles:      files,
		AudioRegions:    audioRegions,
		MidiRegions:     midiRegions,
		CompoundRegions: compoundRegions,
	}
	for _, w := range warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}

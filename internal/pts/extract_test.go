package pts

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestExtractor(t *testing.T, buf []byte, bigEndian bool) *extractor {
	t.Helper()
	f := BuildForest(buf, bigEndian, TreeOptions{})
	require.Empty(t, f.Warnings)
	return newExtractor(NewReader(buf, bigEndian), NewIndex(f), zaptest.NewLogger(t).Sugar())
}

// wavEntry encodes one WAV names entry: name, type tag and trailer.
func (e enc) wavEntry(name, typeTag string) []byte {
	return cat(e.str(name), []byte(typeTag), zeros(wavEntryTrailer))
}

func (e enc) wavList(count uint32, entries [][]byte, lengths ...uint64) []byte {
	names := e.block(1, CTWavNames, zeros(wavNamesStart-2), cat(entries...))
	body := [][]byte{e.u32(count), names}
	for _, l := range lengths {
		size := e.block(1, CTWavSampleRateSize, zeros(wavLengthOffset-2), e.u64(l))
		body = append(body, e.block(1, CTWavMetadata, size))
	}
	return e.block(1, CTWavListFull, body...)
}

func TestExtractor_AudioFiles(t *testing.T) {
	for _, big := range []bool{true, false} {
		e := enc{big: big}
		entries := [][]byte{e.wavEntry("kick.wav", "WAVE"), e.wavEntry("snare.aif", "AIFF")}

		t.Run("per-entry lengths", func(t *testing.T) {
			x := newTestExtractor(t, rawBlocks(e.wavList(2, entries, 88200, 176400)), big)
			require.Equal(t, []AudioRef{
				{Index: 0, Filename: "kick.wav", Length: 88200},
				{Index: 1, Filename: "snare.aif", Length: 176400},
			}, x.audioFiles())
		})

		t.Run("shared length", func(t *testing.T) {
			x := newTestExtractor(t, rawBlocks(e.wavList(2, entries, 88200)), big)
			require.Equal(t, []AudioRef{
				{Index: 0, Filename: "kick.wav", Length: 88200},
				{Index: 1, Filename: "snare.aif", Length: 88200},
			}, x.audioFiles())
		})

		t.Run("no metadata", func(t *testing.T) {
			x := newTestExtractor(t, rawBlocks(e.wavList(2, entries)), big)
			refs := x.audioFiles()
			require.Len(t, refs, 2)
			require.Zero(t, refs[1].Length)
		})

		t.Run("count bounds entries", func(t *testing.T) {
			x := newTestExtractor(t, rawBlocks(e.wavList(1, entries, 88200)), big)
			require.Equal(t, []AudioRef{{Index: 0, Filename: "kick.wav", Length: 88200}}, x.audioFiles())
		})
	}
}

func TestExtractor_AudioFilesRejected(t *testing.T) {
	e := enc{big: false}
	entries := [][]byte{
		e.wavEntry("Audio Files/kick.wav", "WAVE"),
		e.wavEntry("Fade Files/fade.wav", "WAVE"),
		e.wavEntry("drums.grp", "WAVE"),
		e.wavEntry("notes.txt", "TEXT"),
		e.wavEntry("loop.wav", "MP3 "),
		e.wavEntry("Snare.AIF", "FFIA"),
	}
	x := newTestExtractor(t, rawBlocks(e.wavList(6, entries, 1000)), false)
	require.Equal(t, []AudioRef{{Index: 0, Filename: "Snare.AIF", Length: 1000}}, x.audioFiles())
}

func TestAcceptAudioRef(t *testing.T) {
	tests := []struct {
		name, tag string
		want      bool
	}{
		{"kick.wav", "WAVE", true},
		{"kick.wav", "EVAW", true},
		{"pad.aif", "AIFF", true},
		{"pad.aiff", "AIFF", false},
		{"kick.wav", "AIFC", false},
		{"Audio Files/kick.wav", "WAVE", false},
		{"session.grp/kick.wav", "WAVE", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, acceptAudioRef(tt.name, tt.tag), "%s/%s", tt.name, tt.tag)
	}
}

func (e enc) audioTrack(name string, channels ...uint16) []byte {
	body := cat(e.str(name), zeros(trackNameTrailer), e.u32(uint32(len(channels))))
	for _, ch := range channels {
		body = append(body, e.u16(ch)...)
	}
	return e.block(1, CTAudioTrackNameNumber, body)
}

func TestExtractor_AudioTracks(t *testing.T) {
	for _, big := range []bool{true, false} {
		e := enc{big: big}
		buf := rawBlocks(e.block(1, CTAudioTracks, zeros(2),
			e.audioTrack("Drums", 0, 1),
			e.audioTrack("Bass", 2),
			e.audioTrack("Wide", 0, 1, 2, 3, 4, 5, 6, 7, 8),
		))
		x := newTestExtractor(t, buf, big)

		tracks := x.audioTracks()
		require.Len(t, tracks, 3)
		require.Equal(t, Track{Kind: AudioTrack, Index: 0, Name: "Drums", Channels: []int32{0, 1}}, tracks[0])
		require.Equal(t, Track{Kind: AudioTrack, Index: 1, Name: "Bass", Channels: []int32{2}}, tracks[1])
		require.Equal(t, "Wide", tracks[2].Name)
		require.Empty(t, tracks[2].Channels)
	}
}

func TestExtractor_MidiTracks(t *testing.T) {
	e := enc{big: true}
	buf := rawBlocks(e.block(1, CTMidiTrackFullList, zeros(2),
		e.block(1, CTMidiTrackNameNumber, zeros(2), e.str("Keys")),
		e.block(1, CTMidiTrackNameNumber, zeros(2), e.str("Lead")),
	))
	x := newTestExtractor(t, buf, true)
	require.Equal(t, []Track{
		{Kind: MidiTrack, Index: 0, Name: "Keys"},
		{Kind: MidiTrack, Index: 1, Name: "Lead"},
	}, x.midiTracks())
}

const testZeroTicks = 0xe8d4a51000

func (e enc) midiEventsBlock(declared uint32, notes ...MidiNote) []byte {
	body := cat(zeros(midiEventsStart-2), e.u32(declared), e.u64(testZeroTicks))
	for _, n := range notes {
		body = cat(body,
			e.u64(uint64(n.Position)+testZeroTicks),
			[]byte{n.Pitch},
			e.u64(uint64(n.Length)),
			[]byte{n.Velocity},
		)
	}
	return e.block(1, CTMidiEventsBlock, body)
}

func TestExtractor_MidiEvents(t *testing.T) {
	notes := []MidiNote{
		{Position: 960, Length: 480, Pitch: 60, Velocity: 100},
		{Position: 1920, Length: 240, Pitch: 64, Velocity: 80},
	}
	for _, big := range []bool{true, false} {
		e := enc{big: big}
		buf := rawBlocks(
			e.midiEventsBlock(2, notes...),
			e.midiEventsBlock(7, notes[:1]...),
			e.midiEventsBlock(0),
		)
		x := newTestExtractor(t, buf, big)

		chunks := x.midiChunks()
		require.Len(t, chunks, 3)
		require.Equal(t, notes, chunks[0])
		require.Equal(t, notes[:1], chunks[1])
		require.Empty(t, chunks[2])
	}
}

func TestExtractor_Header(t *testing.T) {
	for _, big := range []bool{true, false} {
		e := enc{big: big}
		buf := rawBlocks(
			e.block(1, CTSnapsBlock, zeros(1),
				e.block(1, ContentType(0x2519), e.str("Nested.ptx")),
			),
			e.block(1, ContentType(0x2519), e.str("readme.txt")),
			e.block(1, CTInfoProductVersion, e.str("12.5.0")),
			e.block(1, CTInfoSampleRate, zeros(2), e.u32(48000)),
			e.block(1, ContentType(0x2519), e.str("My Song.ptx")),
			e.block(1, CTInfoProductVersion, e.str("10.0.0")),
			e.block(1, CTInfoSampleRate, zeros(2), e.u32(44100)),
		)
		x := newTestExtractor(t, buf, big)
		require.Equal(t, HeaderInfo{
			SessionName:    "My Song.ptx",
			SampleRate:     48000,
			ProductVersion: "12.5.0",
		}, x.header())
	}
}

func TestIsSessionFilename(t *testing.T) {
	require.True(t, IsSessionFilename("a.ptx"))
	require.True(t, IsSessionFilename("Old Session.PTS"))
	require.True(t, IsSessionFilename("x.ptf"))
	require.False(t, IsSessionFilename("a.wav"))
	require.False(t, IsSessionFilename("ptx"))
}

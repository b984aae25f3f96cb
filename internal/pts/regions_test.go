package pts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRegionMetadata_Widths(t *testing.T) {
	for _, big := range []bool{true, false} {
		e := enc{big: big}
		for sw := 1; sw <= 5; sw++ {
			for ow := 1; ow <= 5; ow++ {
				for lw := 1; lw <= 5; lw++ {
					t.Run(fmt.Sprintf("big=%t/%d%d%d", big, sw, ow, lw), func(t *testing.T) {
						want := RegionMetadata{
							Start:  int64(1)<<(8*sw) - 1,
							Offset: int64(0x21) << (8 * (ow - 1)),
							Length: int64(lw*40 + ow),
						}
						buf := cat(zeros(3), e.regionMeta(want.Start, want.Offset, want.Length, sw, ow, lw), zeros(2))
						got, next, err := readRegionMetadata(NewReader(buf, big), 3)
						require.NoError(t, err)
						require.Equal(t, want, got)
						require.Equal(t, 3+regionControlSize+sw+ow+lw, next)
					})
				}
			}
		}
	}
}

func TestReadRegionMetadata_Errors(t *testing.T) {
	e := enc{big: true}

	buf := e.regionMeta(1, 2, 3, 1, 1, 1)
	buf[4] = 0x70
	_, next, err := readRegionMetadata(NewReader(buf, true), 0)
	require.ErrorIs(t, err, errFieldWidth)
	require.Equal(t, 0, next)

	buf = e.regionMeta(1, 2, 3, 4, 4, 4)
	_, _, err = readRegionMetadata(NewReader(buf[:len(buf)-1], true), 0)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, _, err = readRegionMetadata(NewReader(zeros(3), true), 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func (e enc) region(ct ContentType, name string, m RegionMetadata) []byte {
	return e.block(1, ct, e.str(name), e.regionMeta(m.Start, m.Offset, m.Length, 4, 3, 3), zeros(2))
}

func TestExtractor_Regions(t *testing.T) {
	kick := RegionMetadata{Start: 48000, Offset: 0, Length: 22050}
	kick2 := RegionMetadata{Start: 96000, Offset: 100, Length: 22050}
	keys := RegionMetadata{Start: 0, Offset: 0, Length: 192000}
	comp := RegionMetadata{Start: 1000, Offset: 0, Length: 5000}

	for _, big := range []bool{true, false} {
		e := enc{big: big}
		buf := rawBlocks(
			e.block(1, CTAudioRegionListV10, zeros(2),
				e.region(CTAudioRegionNameNumberV10, "Kick-01", kick),
			),
			e.block(1, CTAudioRegionListV5, zeros(2),
				e.region(CTRegionNameNumber, "Kick-02", kick2),
				e.region(CTMidiRegionNameNumberV5, "ignored", kick),
			),
			e.block(1, CTMidiRegionsMapV10, zeros(2),
				e.region(CTMidiRegionsNameNumberV10, "Keys-01", keys),
			),
			e.block(1, CTCompoundRegionFullMap, zeros(2),
				e.region(CTCompoundRegionElement, "Kick Comp", comp),
			),
		)
		x := newTestExtractor(t, buf, big)

		require.Equal(t, []Region{
			{Kind: AudioRegion, Name: "Kick-01", RegionMetadata: kick},
			{Kind: AudioRegion, Name: "Kick-02", RegionMetadata: kick2},
		}, x.regions(AudioRegion))
		require.Equal(t, []Region{{Kind: MidiRegion, Name: "Keys-01", RegionMetadata: keys}}, x.regions(MidiRegion))
		require.Equal(t, []Region{{Kind: CompoundRegion, Name: "Kick Comp", RegionMetadata: comp}}, x.regions(CompoundRegion))
	}
}

func TestAttachNotes(t *testing.T) {
	regions := []Region{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	chunks := [][]MidiNote{{{Pitch: 60}}, {{Pitch: 62}, {Pitch: 64}}}
	attachNotes(regions, chunks)
	require.Equal(t, chunks[0], regions[0].Notes)
	require.Equal(t, chunks[1], regions[1].Notes)
	require.Nil(t, regions[2].Notes)
}

func TestAssociate(t *testing.T) {
	tracks := []Track{{Name: "Kick"}, {Name: "Kick In"}, {Name: ""}, {Name: "Snare"}}
	audio := []Region{{Name: "kick_01"}, {Name: "Kick In_01"}, {Name: "snare-02"}}
	compound := []Region{{Name: "KICK comp"}}

	associate(tracks, audio, compound)

	names := func(rs []Region) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}
	require.Equal(t, []string{"kick_01", "Kick In_01", "KICK comp"}, names(tracks[0].Regions))
	require.Equal(t, []string{"Kick In_01"}, names(tracks[1].Regions))
	require.Empty(t, tracks[2].Regions)
	require.Equal(t, []string{"snare-02"}, names(tracks[3].Regions))
}

func TestRegionMetadata_Overlaps(t *testing.T) {
	a := RegionMetadata{Start: 100, Length: 50}
	require.EqualValues(t, 150, a.End())
	require.True(t, a.Overlaps(RegionMetadata{Start: 149, Length: 10}))
	require.True(t, a.Overlaps(RegionMetadata{Start: 0, Length: 500}))
	require.False(t, a.Overlaps(RegionMetadata{Start: 150, Length: 10}))
	require.False(t, a.Overlaps(RegionMetadata{Start: 90, Length: 10}))
}

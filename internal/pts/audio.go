package pts

import (
	"strings"
)

const (
	wavCountOffset   = 2
	wavNamesStart    = 11
	wavTypeSize      = 4
	wavEntryTrailer  = 5
	wavLengthOffset  = 8
	trackNameTrailer = 5

	maxChannelsPerTrack = 8
)

var (
	// Paths under these folders are bookkeeping entries, not audio sources.
	excludedAudioPaths = []string{".grp", "Audio Files", "Fade Files"}

	audioTypeTags = map[string]bool{
		"WAVE": true,
		"EVAW": true,
		"AIFF": true,
		"FFIA": true,
	}

	audioExtensions = []string{".wav", ".aif"}
)

// acceptAudioRef reports whether a WAV names entry refers to an audio file.
func acceptAudioRef(name, typeTag string) bool {
	for _, ex := range excludedAudioPaths {
		if strings.Contains(name, ex) {
			return false
		}
	}
	if !audioTypeTags[typeTag] {
		return false
	}
	lower := strings.ToLower(name)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// audioFiles decodes the audio file references of every WAV list block.
func (x *extractor) audioFiles() []AudioRef {
	var refs []AudioRef
	for _, listID := range x.idx.Of(CTWavListFull) {
		list := x.f.Block(listID)
		count, err := x.r.U32(int(list.Offset) + wavCountOffset)
		if err != nil {
			x.sugar.Debugw("skipping WAV list", "offset", list.Offset, "error", err)
			continue
		}
		lengths := x.wavLengths(listID)

		var n uint32
		for _, namesID := range x.f.ChildrenOf(listID, CTWavNames) {
			names := x.f.Block(namesID)
			pos := int(names.Offset) + wavNamesStart
			end := int(names.End())
			for pos < end && n < count {
				name, next, err := x.r.String(pos)
				if err != nil {
					x.sugar.Debugw("WAV name unreadable", "offset", pos, "error", err)
					break
				}
				tag, err := x.r.Bytes(next, wavTypeSize)
				if err != nil {
					break
				}
				pos = next + wavTypeSize + wavEntryTrailer

				if !acceptAudioRef(name, string(tag)) {
					x.sugar.Debugw("rejected audio reference", "name", name, "type", string(tag))
					continue
				}
				refs = append(refs, AudioRef{
					Index:    int32(n),
					Filename: name,
					Length:   lengthFor(lengths, int(n)),
				})
				n++
			}
		}
		x.sugar.Debugw("WAV list decoded", "offset", list.Offset, "declared", count, "accepted", n)
	}
	return refs
}

// wavLengths reads the byte length held by each metadata child of a WAV
// list, in order. Unreadable entries are zero.
func (x *extractor) wavLengths(listID BlockID) []int64 {
	var lengths []int64
	for _, metaID := range x.f.ChildrenOf(listID, CTWavMetadata) {
		var length int64
		if sizes := x.f.ChildrenOf(metaID, CTWavSampleRateSize); len(sizes) > 0 {
			if v, err := x.r.U64(int(x.f.Block(sizes[0]).Offset) + wavLengthOffset); err == nil {
				length = int64(v)
			}
		}
		lengths = append(lengths, length)
	}
	return lengths
}

// lengthFor pairs the n-th accepted reference with the n-th metadata entry.
// Lists carrying a single metadata entry share it across references.
func lengthFor(lengths []int64, n int) int64 {
	switch {
	case n < len(lengths):
		return lengths[n]
	case len(lengths) > 0:
		return lengths[0]
	default:
		return 0
	}
}

// audioTracks decodes track names and channel assignments.
func (x *extractor) audioTracks() []Track {
	var tracks []Track
	for _, listID := range x.idx.Of(CTAudioTracks) {
		for _, id := range x.f.ChildrenOf(listID, CTAudioTrackNameNumber) {
			name, pos, err := x.stringAt(id, 2)
			if err != nil {
				x.sugar.Debugw("audio track name unreadable", "offset", x.f.Block(id).Offset, "error", err)
				continue
			}
			tracks = append(tracks, Track{
				Kind:     AudioTrack,
				Index:    len(tracks),
				Name:     name,
				Channels: x.channels(pos + trackNameTrailer),
			})
		}
	}
	return tracks
}

func (x *extractor) channels(pos int) []int32 {
	n, err := x.r.U32(pos)
	if err != nil || n > maxChannelsPerTrack {
		return nil
	}
	pos += 4
	chans := make([]int32, 0, n)
	for i := uint32(0); i < n; i++ {
		ch, err := x.r.U16(pos)
		if err != nil {
			break
		}
		chans = append(chans, int32(ch))
		pos += 2
	}
	return chans
}

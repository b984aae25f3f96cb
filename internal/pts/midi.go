package pts

const (
	midiTrackNameOffset = 4
	midiEventsStart     = 11
	midiEventSize       = 18
)

// midiTracks decodes the MIDI track list.
func (x *extractor) midiTracks() []Track {
	var tracks []Track
	for _, listID := range x.idx.Of(CTMidiTrackFullList) {
		for _, id := range x.f.ChildrenOf(listID, CTMidiTrackNameNumber) {
			name, _, err := x.stringAt(id, midiTrackNameOffset)
			if err != nil {
				x.sugar.Debugw("MIDI track name unreadable", "offset", x.f.Block(id).Offset, "error", err)
				continue
			}
			tracks = append(tracks, Track{Kind: MidiTrack, Index: len(tracks), Name: name})
		}
	}
	return tracks
}

// midiChunks decodes every MIDI events block into its notes, one slice per
// block in file order.
func (x *extractor) midiChunks() [][]MidiNote {
	var chunks [][]MidiNote
	for _, id := range x.idx.Of(CTMidiEventsBlock) {
		chunks = append(chunks, x.midiEvents(id))
	}
	return chunks
}

// midiEvents reads the event count and zero ticks, then fixed-size events:
// position (u64), pitch (u8), length (u64), velocity (u8).
func (x *extractor) midiEvents(id BlockID) []MidiNote {
	blk := x.f.Block(id)
	pos := int(blk.Offset) + midiEventsStart
	end := int(blk.End())

	count, err := x.r.U32(pos)
	if err != nil {
		return nil
	}
	zeroTicks, err := x.r.U64(pos + 4)
	if err != nil {
		return nil
	}
	pos += 12

	capacity := int(count)
	if room := (end - pos) / midiEventSize; room < capacity {
		capacity = max(room, 0)
	}
	notes := make([]MidiNote, 0, capacity)
	for i := uint32(0); i < count && pos+midiEventSize <= end; i++ {
		position, err := x.r.U64(pos)
		if err != nil {
			break
		}
		pitch, _ := x.r.U8(pos + 8)
		length, _ := x.r.U64(pos + 9)
		velocity, _ := x.r.U8(pos + 17)
		notes = append(notes, MidiNote{
			Position: int64(position - zeroTicks),
			Length:   int64(length),
			Pitch:    pitch,
			Velocity: velocity,
		})
		pos += midiEventSize
	}
	x.sugar.Debugw("MIDI events decoded", "offset", blk.Offset, "declared", count, "decoded", len(notes))
	return notes
}

package pts

import (
	"fmt"
	"strings"
)

const (
	regionNameOffset  = 2
	regionControlSize = 5
)

// regionList describes which entry tags a region list block holds. The
// tags differ between format generations.
type regionList struct {
	kind    RegionKind
	entries []ContentType
}

var regionLists = map[ContentType]regionList{
	CTAudioRegionListV5:     {AudioRegion, []ContentType{CTAudioRegionNameNumberV5, CTRegionNameNumber}},
	CTAudioRegionListV10:    {AudioRegion, []ContentType{CTAudioRegionNameNumberV10}},
	CTMidiRegionsMapV5:      {MidiRegion, []ContentType{CTMidiRegionNameNumberV5}},
	CTMidiRegionsMapV10:     {MidiRegion, []ContentType{CTMidiRegionsNameNumberV10}},
	CTCompoundRegionFullMap: {CompoundRegion, []ContentType{CTCompoundRegionElement}},
}

func listTags(kind RegionKind) []ContentType {
	var tags []ContentType
	for tag, l := range regionLists {
		if l.kind == kind {
			tags = append(tags, tag)
		}
	}
	return tags
}

// readRegionMetadata decodes the three variable-width fields at pos. A
// 5-byte control header carries each field's width in the high nibble of
// one byte; which byte depends on the endianness. The values follow the
// header in the order offset, length, start.
func readRegionMetadata(r Reader, pos int) (RegionMetadata, int, error) {
	ctl, err := r.Bytes(pos, regionControlSize)
	if err != nil {
		return RegionMetadata{}, pos, err
	}
	var offsetW, lengthW, startW int
	if r.BigEndian {
		offsetW, lengthW, startW = int(ctl[4]>>4), int(ctl[3]>>4), int(ctl[2]>>4)
	} else {
		offsetW, lengthW, startW = int(ctl[1]>>4), int(ctl[2]>>4), int(ctl[3]>>4)
	}

	cur := pos + regionControlSize
	var m RegionMetadata
	for _, f := range []struct {
		dst   *int64
		width int
		name  string
	}{
		{&m.Offset, offsetW, "offset"},
		{&m.Length, lengthW, "length"},
		{&m.Start, startW, "start"},
	} {
		v, err := r.VarInt(cur, f.width)
		if err != nil {
			return RegionMetadata{}, pos, fmt.Errorf("region %s: %w", f.name, err)
		}
		*f.dst = v
		cur += f.width
	}
	return m, cur, nil
}

// regions decodes every entry of the region lists of one kind.
func (x *extractor) regions(kind RegionKind) []Region {
	var out []Region
	for _, listID := range x.idx.Of(listTags(kind)...) {
		list := regionLists[x.f.Block(listID).ContentType]
		for _, id := range x.f.ChildrenOf(listID, list.entries...) {
			name, pos, err := x.stringAt(id, regionNameOffset)
			if err != nil {
				x.sugar.Debugw("region name unreadable", "kind", kind, "offset", x.f.Block(id).Offset, "error", err)
				continue
			}
			meta, _, err := readRegionMetadata(x.r, pos)
			if err != nil {
				x.sugar.Debugw("region metadata unreadable", "kind", kind, "name", name, "error", err)
				continue
			}
			out = append(out, Region{Kind: kind, Name: name, RegionMetadata: meta})
		}
	}
	return out
}

// attachNotes gives the k-th MIDI region the notes of the k-th MIDI events
// block.
func attachNotes(regions []Region, chunks [][]MidiNote) {
	for i := range regions {
		if i < len(chunks) {
			regions[i].Notes = chunks[i]
		}
	}
}

// associate attaches to each track the regions whose name starts with the
// track name, ignoring case. This is a naming convention of the writer, not
// a structural link, and can attach regions of similarly named tracks.
func associate(tracks []Track, families ...[]Region) {
	for i := range tracks {
		prefix := strings.ToLower(tracks[i].Name)
		if prefix == "" {
			continue
		}
		for _, regions := range families {
			for _, r := range regions {
				if strings.HasPrefix(strings.ToLower(r.Name), prefix) {
					tracks[i].Regions = append(tracks[i].Regions, r)
				}
			}
		}
	}
}

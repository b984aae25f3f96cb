package pts

// Session is the decoded content of a session file.
type Session struct {
	Header          HeaderInfo `json:"header"`
	AudioTracks     []Track    `json:"audio_tracks"`
	MidiTracks      []Track    `json:"midi_tracks"`
	AudioFiles      []AudioRef `json:"audio_files"`
	AudioRegions    []Region   `json:"audio_regions"`
	MidiRegions     []Region   `json:"midi_regions"`
	CompoundRegions []Region   `json:"compound_regions"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// HeaderInfo holds session-wide metadata.
type HeaderInfo struct {
	SessionName    string `json:"session_name"`
	SampleRate     int32  `json:"sample_rate"`
	ProductVersion string `json:"product_version"`
	Version        int    `json:"version"`
}

// AudioRef is an audio file referenced by the session.
type AudioRef struct {
	Index    int32  `json:"index"`
	Filename string `json:"filename"`
	Length   int64  `json:"length"`
}

// RegionMetadata places a region on the timeline. Offset is the position
// within the region's source.
type RegionMetadata struct {
	Start  int64 `json:"start"`
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

// End is the timeline position just past the region.
func (m RegionMetadata) End() int64 {
	return m.Start + m.Length
}

// Overlaps reports whether the two regions share any timeline position.
func (m RegionMetadata) Overlaps(other RegionMetadata) bool {
	return m.Start < other.End() && m.End() > other.Start
}

// RegionKind tags the variant of a Region.
type RegionKind int

const (
	AudioRegion RegionKind = iota + 1
	MidiRegion
	CompoundRegion
)

// String returns the kind name used in JSON output.
func (k RegionKind) String() string {
	switch k {
	case AudioRegion:
		return "audio"
	case MidiRegion:
		return "midi"
	case CompoundRegion:
		return "compound"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k RegionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Region is an audio, MIDI or compound region. Only MIDI regions carry notes.
type Region struct {
	Kind RegionKind `json:"kind"`
	Name string     `json:"name"`
	RegionMetadata
	Notes []MidiNote `json:"notes,omitempty"`
}

// MidiNote is a note event. Position is relative to its block's zero ticks.
type MidiNote struct {
	Position int64 `json:"position"`
	Length   int64 `json:"length"`
	Pitch    uint8 `json:"pitch"`
	Velocity uint8 `json:"velocity"`
}

// TrackKind tags the variant of a Track.
type TrackKind int

const (
	AudioTrack TrackKind = iota + 1
	MidiTrack
)

// String returns the kind name used in JSON output.
func (k TrackKind) String() string {
	switch k {
	case AudioTrack:
		return "audio"
	case MidiTrack:
		return "midi"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k TrackKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Track is an audio or MIDI track. Index, its position among tracks of the
// same kind, identifies it; names are not unique.
type Track struct {
	Kind     TrackKind `json:"kind"`
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Channels []int32   `json:"channels"`
	Regions  []Region  `json:"regions"`
}

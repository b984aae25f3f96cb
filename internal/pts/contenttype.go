package pts

import "fmt"

// ContentType is the 16-bit tag that says what a block's payload holds.
type ContentType uint16

const (
	CTInfoVersion                ContentType = 0x0003
	CTInfoProductVersion         ContentType = 0x0030
	CTWavSampleRateSize          ContentType = 0x1001
	CTWavMetadata                ContentType = 0x1003
	CTWavListFull                ContentType = 0x1004
	CTRegionNameNumber           ContentType = 0x1007
	CTAudioRegionNameNumberV5    ContentType = 0x1008
	CTAudioRegionListV5          ContentType = 0x100B
	CTAudioRegionTrackEntry      ContentType = 0x100F
	CTAudioRegionTrackMapEntries ContentType = 0x1011
	CTAudioRegionTrackFullMap    ContentType = 0x1012
	CTAudioTrackNameNumber       ContentType = 0x1014
	CTAudioTracks                ContentType = 0x1015
	CTPluginEntry                ContentType = 0x1017
	CTPluginFullList             ContentType = 0x1018
	CTIOChannelEntry             ContentType = 0x1021
	CTIOChannelList              ContentType = 0x1022
	CTInfoSampleRate             ContentType = 0x1028
	CTWavNames                   ContentType = 0x103A
	CTAudioRegionTrackSubentryV8 ContentType = 0x104F
	CTAudioRegionTrackEntryV8    ContentType = 0x1050
	CTAudioRegionTrackMapEntryV8 ContentType = 0x1052
	CTAudioRegionTrackFullMapV8  ContentType = 0x1054
	CTMidiRegionTrackEntry       ContentType = 0x1056
	CTMidiRegionTrackMapEntries  ContentType = 0x1057
	CTMidiRegionTrackFullMap     ContentType = 0x1058
	CTMidiEventsBlock            ContentType = 0x2000
	CTMidiRegionNameNumberV5     ContentType = 0x2001
	CTMidiRegionsMapV5           ContentType = 0x2002
	CTInfoPathOfSession          ContentType = 0x2067
	CTSnapsBlock                 ContentType = 0x2511
	CTIORoute                    ContentType = 0x2602
	CTIORoutingTable             ContentType = 0x2603
	CTMidiTrackFullList          ContentType = 0x2619
	CTMidiTrackNameNumber        ContentType = 0x261A
	CTCompoundRegionElement      ContentType = 0x2623
	CTCompoundRegionGroup        ContentType = 0x2628
	CTAudioRegionNameNumberV10   ContentType = 0x2629
	CTAudioRegionListV10         ContentType = 0x262A
	CTCompoundRegionFullMap      ContentType = 0x262C
	CTMidiRegionsNameNumberV10   ContentType = 0x2633
	CTMidiRegionsMapV10          ContentType = 0x2634
	CTMarkerList                 ContentType = 0x271A
)

var contentTypeNames = map[ContentType]string{
	CTInfoVersion:                "InfoVersion",
	CTInfoProductVersion:         "InfoProductVersion",
	CTWavSampleRateSize:          "WavSampleRateSize",
	CTWavMetadata:                "WavMetadata",
	CTWavListFull:                "WavListFull",
	CTRegionNameNumber:           "RegionNameNumber",
	CTAudioRegionNameNumberV5:    "AudioRegionNameNumberV5",
	CTAudioRegionListV5:          "AudioRegionListV5",
	CTAudioRegionTrackEntry:      "AudioRegionTrackEntry",
	CTAudioRegionTrackMapEntries: "AudioRegionTrackMapEntries",
	CTAudioRegionTrackFullMap:    "AudioRegionTrackFullMap",
	CTAudioTrackNameNumber:       "AudioTrackNameNumber",
	CTAudioTracks:                "AudioTracks",
	CTPluginEntry:                "PluginEntry",
	CTPluginFullList:             "PluginFullList",
	CTIOChannelEntry:             "IOChannelEntry",
	CTIOChannelList:              "IOChannelList",
	CTInfoSampleRate:             "InfoSampleRate",
	CTWavNames:                   "WavNames",
	CTAudioRegionTrackSubentryV8: "AudioRegionTrackSubentryV8",
	CTAudioRegionTrackEntryV8:    "AudioRegionTrackEntryV8",
	CTAudioRegionTrackMapEntryV8: "AudioRegionTrackMapEntriesV8",
	CTAudioRegionTrackFullMapV8:  "AudioRegionTrackFullMapV8",
	CTMidiRegionTrackEntry:       "MidiRegionTrackEntry",
	CTMidiRegionTrackMapEntries:  "MidiRegionTrackMapEntries",
	CTMidiRegionTrackFullMap:     "MidiRegionTrackFullMap",
	CTMidiEventsBlock:            "MidiEventsBlock",
	CTMidiRegionNameNumberV5:     "MidiRegionNameNumberV5",
	CTMidiRegionsMapV5:           "MidiRegionsMapV5",
	CTInfoPathOfSession:          "InfoPathOfSession",
	CTSnapsBlock:                 "SnapsBlock",
	CTIORoute:                    "IORoute",
	CTIORoutingTable:             "IORoutingTable",
	CTMidiTrackFullList:          "MidiTrackFullList",
	CTMidiTrackNameNumber:        "MidiTrackNameNumber",
	CTCompoundRegionElement:      "CompoundRegionElement",
	CTCompoundRegionGroup:        "CompoundRegionGroup",
	CTAudioRegionNameNumberV10:   "AudioRegionNameNumberV10",
	CTAudioRegionListV10:         "AudioRegionListV10",
	CTCompoundRegionFullMap:      "CompoundRegionFullMap",
	CTMidiRegionsNameNumberV10:   "MidiRegionsNameNumberV10",
	CTMidiRegionsMapV10:          "MidiRegionsMapV10",
	CTMarkerList:                 "MarkerList",
}

// IsKnown reports whether the tag is one of the recognized codes. Unknown
// tags are kept in the tree but no extractor reads them.
func (c ContentType) IsKnown() bool {
	_, ok := contentTypeNames[c]
	return ok
}

// String returns the tag name, or its hex code when unknown.
func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04x)", uint16(c))
}

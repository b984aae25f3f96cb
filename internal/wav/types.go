package wav

// AudioInfo describes an audio file referenced by a session as found on disk.
type AudioInfo struct {
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	Format     string  `json:"format,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	BitDepth   int     `json:"bit_depth,omitempty"`
	Seconds    float64 `json:"seconds,omitempty"`

	// RateMismatch is set when the file's sample rate differs from the
	// session's.
	RateMismatch bool   `json:"rate_mismatch,omitempty"`
	Error        string `json:"error,omitempty"`
}

package keaconfig

// A structure representing a single logger configuration.
// Kea 2.5 introduced an alias output-options. The configurations returned
// by the servers may use any of them, but the rendered configurations use
// output_options because it is supported by all Kea versions.
type Logger struct {
	Name               string                `json:"name"`
	OutputOptions      []LoggerOutputOptions `json:"output_options,omitempty"`
	OutputOptionsAlias []LoggerOutputOptions `json:"output-options,omitempty"`
	Severity           string                `json:"severity"`
	DebugLevel         int                   `json:"debuglevel"`
}

// A structure representing output_options for a logger.
type LoggerOutputOptions struct {
	Output  string `json:"output"`
	MaxSize *int64 `json:"maxsize,omitempty"`
	MaxVer  *int64 `json:"maxver,omitempty"`
	Flush   *bool  `json:"flush,omitempty"`
}

// Returns combined OutputOptions and OutputOptionsAlias.
func (logger Logger) GetAllOutputOptions() []LoggerOutputOptions {
	return append(logger.OutputOptions, logger.OutputOptionsAlias...)
}

package magnify

import (
	"encoding/json"
	"fmt"
)

// FileMode selects how an output file is opened.
type FileMode int

const (
	ModeCreate FileMode = iota
	ModeUpdate
)

var fileModeStrings = []string{
	"create",
	"update",
}

func (m FileMode) String() string {
	if m < ModeCreate || m > ModeUpdate {
		return "UNKNOWN"
	}
	return fileModeStrings[m]
}

func (m FileMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *FileMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := ParseFileMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func ParseFileMode(s string) (FileMode, error) {
	for i, v := range fileModeStrings {
		if v == s {
			return FileMode(i), nil
		}
	}
	// "recreate" is accepted for files written by older scripts
	if s == "recreate" {
		return ModeCreate, nil
	}
	return 0, fmt.Errorf("invalid FileMode: %s", s)
}

type Configuration struct {
	Verbosity int    `json:"verbosity"`
	FileIn    string `json:"file_in"`
	OutDir    string `json:"out_dir"`
	InTag     string `json:"in_tag"`
	OutTag    string `json:"out_tag"`
	Suffix    string `json:"suffix"`

	SubtractBaseline bool     `json:"subtract_baseline"`
	FileMode         FileMode `json:"file_mode"`
	NTicks           int      `json:"n_ticks"`
	OutputScale      float64  `json:"output_scale"`
	CompressionLevel int      `json:"compression_level"`
	Parallel         bool     `json:"parallel"`

	Kind               *DatasetKind `json:"kind,omitempty"`
	Scale              float64      `json:"scale"`
	Threshold          float64      `json:"threshold"`
	ChannelThreshold   string       `json:"channel_threshold"`
	ThresholdScaling   float64      `json:"threshold_scaling"`
	ZMin               float64      `json:"zmin"`
	ZMax               float64      `json:"zmax"`
	Channel            int          `json:"channel"`
	Tick               int          `json:"tick"`
	PlotDir            string       `json:"plot_dir"`
	PlotFormat         string       `json:"plot_format"`
	ExcludeBadChannels bool         `json:"exclude_bad_channels"`
	BadChannelTag      string       `json:"bad_channel_tag"`

	NoDB      bool   `json:"no_db"`
	DBDriver  string `json:"db_driver"`
	DBFile    string `json:"db_file"`
	Host      string `json:"host"`
	User      string `json:"user"`
	Passwd    string `json:"pass"`
	DBName    string `json:"dbname"`
	RunNumber int    `json:"run_number"`
}

// KindOr returns the configured dataset kind, or fallback when none is set.
func (c Configuration) KindOr(fallback DatasetKind) DatasetKind {
	if c.Kind == nil {
		return fallback
	}
	return *c.Kind
}

// SetKind parses s and sets it as the configured dataset kind.
func (c *Configuration) SetKind(s string) error {
	kind, err := ParseDatasetKind(s)
	if err != nil {
		return err
	}
	c.Kind = &kind
	return nil
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

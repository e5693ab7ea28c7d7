package magnify

import (
	"encoding/json"
	"fmt"
	"math"
)

// DatasetKind selects how the per-channel threshold compares samples.
type DatasetKind int

const (
	Raw DatasetKind = iota
	// Deconvolved samples are compared signed.
	Deconvolved
)

var datasetKindStrings = []string{
	"raw",
	"decon",
}

func (k DatasetKind) String() string {
	if k < Raw || k > Deconvolved {
		return "UNKNOWN"
	}
	return datasetKindStrings[k]
}

func (k DatasetKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *DatasetKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := ParseDatasetKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func ParseDatasetKind(s string) (DatasetKind, error) {
	for i, v := range datasetKindStrings {
		if v == s {
			return DatasetKind(i), nil
		}
	}
	return 0, fmt.Errorf("invalid DatasetKind: %s", s)
}

// Storage is the precision samples are kept at once written.
type Storage int

const (
	Float64 Storage = iota
	Float32
	Int32
)

var storageStrings = []string{
	"float64",
	"float32",
	"int32",
}

func (s Storage) String() string {
	if s < Float64 || s > Int32 {
		return "UNKNOWN"
	}
	return storageStrings[s]
}

// Round converts v to the value this storage keeps.
func (s Storage) Round(v float64) float64 {
	switch s {
	case Float32:
		return float64(float32(v))
	case Int32:
		return math.Trunc(v)
	}
	return v
}

func (s Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Storage) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for i, v := range storageStrings {
		if v == str {
			*s = Storage(i)
			return nil
		}
	}
	return fmt.Errorf("invalid Storage: %s", str)
}

package magnify

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ModulesPerDetector is the number of per-module bad-channel lists looked up
// when merging, named <name>0 to <name>5.
const ModulesPerDetector = 6

// BadChannelRegion marks a channel as bad over a tick interval.
type BadChannelRegion struct {
	Channel   int
	Plane     Plane
	StartTick int
	EndTick   int
}

// BadChannelMask answers whether a channel id is excluded.
type BadChannelMask interface {
	IsBad(channelID int) bool
}

// MaskFunc adapts a predicate to BadChannelMask.
type MaskFunc func(channelID int) bool

func (f MaskFunc) IsBad(channelID int) bool {
	return f(channelID)
}

// BadChannelSet is a mask built from a list of regions.
type BadChannelSet struct {
	regions  []BadChannelRegion
	channels map[int]struct{}
}

func NewBadChannelSet(regions []BadChannelRegion) *BadChannelSet {
	s := &BadChannelSet{
		regions:  slices.Clone(regions),
		channels: make(map[int]struct{}, len(regions)),
	}
	for _, r := range regions {
		s.channels[r.Channel] = struct{}{}
	}
	return s
}

func (s *BadChannelSet) IsBad(channelID int) bool {
	if s == nil {
		return false
	}
	_, ok := s.channels[channelID]
	return ok
}

func (s *BadChannelSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.channels)
}

// Channels returns the bad channel ids in increasing order.
func (s *BadChannelSet) Channels() []int {
	if s == nil {
		return nil
	}
	ids := make([]int, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *BadChannelSet) Regions() []BadChannelRegion {
	if s == nil {
		return nil
	}
	return slices.Clone(s.regions)
}

// RegionSource gives access to persisted bad-channel lists by tag.
type RegionSource interface {
	BadChannels(tag string) ([]BadChannelRegion, error)
}

// MergeBadChannels concatenates the per-module lists <name>0..<name>5 found
// in src, in module order. Missing modules are skipped. It returns the merged
// regions and the number of module lists found.
func MergeBadChannels(src RegionSource, name string) ([]BadChannelRegion, int, error) {
	merged := make([]BadChannelRegion, 0)
	found := 0
	for i := 0; i < ModulesPerDetector; i++ {
		tag := fmt.Sprintf("%s%d", name, i)
		regions, err := src.BadChannels(tag)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, found, fmt.Errorf("error reading bad channels %s: %w", tag, err)
		}
		found++
		merged = append(merged, regions...)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("No. of bad channel regions: %d (from %d lists)", len(merged), found)
		logger.Info(message, "badchannels")
	}
	return merged, found, nil
}

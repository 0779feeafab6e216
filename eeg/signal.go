package eeg

import (
	"fmt"
)

// Signal is a uniformly sampled multi-channel time series. Data holds one
// sample slice per channel; all channels have equal length. A Signal is owned
// by exactly one pipeline stage at a time: stages receive a Signal, produce a
// new one, and never mutate an instance they have handed off.
type Signal struct {
	// SampleRate in Hz, always positive
	SampleRate float64

	// Data is indexed [channel][sample]
	Data [][]float64

	// ChannelNames holds one unique name per channel, in channel order
	ChannelNames []string

	// TimeOrigin is the recording time of sample 0, in seconds
	TimeOrigin float64

	channelIndex map[string]int
}

// NewSignal constructs a Signal and validates its invariants: positive
// sampling rate, one name per channel, unique names, equal channel lengths.
func NewSignal(sampleRate float64, channelNames []string, data [][]float64) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %g", ErrBadSignal, sampleRate)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrBadSignal)
	}
	if len(channelNames) != len(data) {
		return nil, fmt.Errorf("%w: %d channel names for %d channels",
			ErrBadSignal, len(channelNames), len(data))
	}

	index := make(map[string]int, len(channelNames))
	for i, name := range channelNames {
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("%w: duplicate channel name %q", ErrBadSignal, name)
		}
		index[name] = i
	}

	length := len(data[0])
	for i, ch := range data {
		if len(ch) != length {
			return nil, fmt.Errorf("%w: channel %q has %d samples, expected %d",
				ErrBadSignal, channelNames[i], len(ch), length)
		}
	}

	return &Signal{
		SampleRate:   sampleRate,
		Data:         data,
		ChannelNames: channelNames,
		channelIndex: index,
	}, nil
}

// Length returns the number of samples per channel.
func (s *Signal) Length() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// Channels returns the number of channels.
func (s *Signal) Channels() int {
	return len(s.Data)
}

// Duration returns the recording length in seconds.
func (s *Signal) Duration() float64 {
	return float64(s.Length()) / s.SampleRate
}

// ChannelIndex looks up a channel by name.
func (s *Signal) ChannelIndex(name string) (int, bool) {
	if s.channelIndex == nil {
		s.channelIndex = make(map[string]int, len(s.ChannelNames))
		for i, n := range s.ChannelNames {
			s.channelIndex[n] = i
		}
	}
	idx, ok := s.channelIndex[name]
	return idx, ok
}

// Clone deep-copies the signal, sample storage included. Stages that must
// not mutate their input correct a clone instead.
func (s *Signal) Clone() *Signal {
	data := make([][]float64, len(s.Data))
	for i, ch := range s.Data {
		data[i] = make([]float64, len(ch))
		copy(data[i], ch)
	}
	names := make([]string, len(s.ChannelNames))
	copy(names, s.ChannelNames)

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	return &Signal{
		SampleRate:   s.SampleRate,
		Data:         data,
		ChannelNames: names,
		TimeOrigin:   s.TimeOrigin,
		channelIndex: index,
	}
}

// WithData returns a new Signal sharing this signal's metadata but holding
// the given sample storage. Channel count and lengths are validated.
func (s *Signal) WithData(data [][]float64) (*Signal, error) {
	out, err := NewSignal(s.SampleRate, s.ChannelNames, data)
	if err != nil {
		return nil, err
	}
	out.TimeOrigin = s.TimeOrigin
	return out, nil
}

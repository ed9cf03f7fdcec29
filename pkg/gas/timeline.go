package gas

import "sort"

// Usage is one tank-usage interval of a dive, in seconds since dive start.
type Usage struct {
	Start int64
	End   int64
	Mix   Mix
}

// contributes reports whether the usage has bounds usable for switching.
// Negative starts and non-positive ends mark incomplete records.
func (u Usage) contributes() bool {
	return u.Start >= 0 && u.End > 0
}

// Switch is a scheduled gas change.
type Switch struct {
	Offset int64
	Ref    string
}

// Timeline is the ordered gas-switch schedule of one dive. Each switch is
// consumed at most once, while samples are visited in ascending time.
type Timeline struct {
	pending []Switch
}

// NewTimeline builds the schedule for a dive from its tank usages.
//
// The earliest switch is moved to offset 0: the first gas is in effect from
// the first sample, whatever start time was recorded. A dive without usable
// intervals breathes air.
func NewTimeline(usages []Usage) *Timeline {
	var pending []Switch
	for _, u := range usages {
		if !u.contributes() {
			continue
		}
		ref := u.Mix.Ref
		if ref == "" {
			ref = Ref(u.Mix.O2, u.Mix.He)
		}
		pending = append(pending, Switch{Offset: u.Start, Ref: ref})
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Offset < pending[j].Offset
	})

	if len(pending) == 0 {
		pending = []Switch{{Offset: 0, Ref: AirRef}}
	} else {
		pending[0].Offset = 0
	}
	return &Timeline{pending: pending}
}

// Next returns the switch due at a sample taken at offset, removing it from
// the schedule. At most one switch is returned per call; when several are
// due, the rest wait for the following samples.
func (t *Timeline) Next(offset int64) (string, bool) {
	if len(t.pending) == 0 || offset < t.pending[0].Offset {
		return "", false
	}
	head := t.pending[0]
	t.pending = t.pending[1:]
	return head.Ref, true
}

// Pending returns the switches not yet consumed.
func (t *Timeline) Pending() []Switch {
	return append([]Switch(nil), t.pending...)
}

// Len returns the number of switches not yet consumed.
func (t *Timeline) Len() int { return len(t.pending) }

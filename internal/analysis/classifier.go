package analysis

import (
	"strings"

	"ctview/pkg/contracts/domain"
)

// EmptyLabelPrefix decorates the display label of an inert digital
// channel. It exists purely for UI disambiguation; the structured Empty
// flag is the source of truth.
const EmptyLabelPrefix = "[EMPTY] "

// ClassifyStatusChannels labels every status channel of a record as
// active or empty. A channel is empty only when it is constant and that
// constant is 0: one that ever changes state, or that sits permanently
// asserted at 1, counts as active.
func ClassifyStatusChannels(r *domain.Record) []domain.DigitalChannelMeta {
	meta := make([]domain.DigitalChannelMeta, len(r.Status))
	for i, ch := range r.Status {
		empty := isEmptySignal(ch.Samples)
		label := ch.ID
		if empty {
			label = EmptyLabelPrefix + ch.ID
		}
		meta[i] = domain.DigitalChannelMeta{ID: ch.ID, Label: label, Empty: empty}
	}
	return meta
}

// isEmptySignal reports whether samples never change value and that
// constant value is not 1.
func isEmptySignal(samples []float64) bool {
	if len(samples) == 0 {
		return true
	}
	first := samples[0]
	if first == 1 {
		return false
	}
	for _, v := range samples[1:] {
		if v != first {
			return false
		}
	}
	return true
}

// StripEmptyLabel recovers the true channel id from a display label that
// may carry the empty-channel decoration.
func StripEmptyLabel(label string) string {
	return strings.TrimPrefix(label, EmptyLabelPrefix)
}

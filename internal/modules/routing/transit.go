package routing

import (
	"fmt"
	"strings"
	"unicode"
)

// NoTransitAdvisory is shown when a transit request came back without any public transport leg.
const NoTransitAdvisory = "⚠️ No public transport routes available. Showing alternative route instead."

var transitKeywords = []string{"bus", "subway", "metro", "train", "take", "board", "transit", "rail"}

// HasTransit reports whether any step looks like a public transport leg.
func HasTransit(r *Route) bool {
	for _, s := range r.Steps {
		if s.Mode == StepTransit {
			return true
		}
		text := strings.ToLower(s.Instruction)
		for _, k := range transitKeywords {
			if strings.Contains(text, k) {
				return true
			}
		}
	}
	return false
}

// Advisory returns the user-facing warning for a route, if any. Only transit requests are checked.
func Advisory(mode TravelMode, r *Route) string {
	if mode != ModeTransit || r == nil {
		return ""
	}
	if HasTransit(r) {
		return ""
	}
	return NoTransitAdvisory
}

// Traffic compares the expected travel time with the free-flow time for the route's mode.
func Traffic(r *Route) TrafficCondition {
	if r == nil || r.Distance <= 0 || r.ExpectedTravelTime <= 0 {
		return TrafficSmooth
	}
	ideal := r.Distance / r.Mode.IdealSpeed()
	ratio := r.ExpectedTravelTime.Seconds() / ideal
	switch {
	case ratio < 1.2:
		return TrafficSmooth
	case ratio < 1.5:
		return TrafficSlow
	default:
		return TrafficCongested
	}
}

type StepKind string

const (
	KindWalking   StepKind = "walking"
	KindBus       StepKind = "bus"
	KindSubway    StepKind = "subway"
	KindLightRail StepKind = "light_rail"
	KindTransit   StepKind = "transit"
	KindOther     StepKind = "other"
)

func ClassifyStep(s Step) StepKind {
	text := strings.ToLower(s.Instruction)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = true
	}
	boarding := words["take"] || words["board"] || s.Mode == StepTransit
	switch {
	case boarding && (words["subway"] || words["metro"]):
		return KindSubway
	case boarding && words["bus"]:
		return KindBus
	case boarding && strings.Contains(text, "light rail"):
		return KindLightRail
	case boarding:
		return KindTransit
	case words["walk"] || words["go"] || s.Mode == StepWalking:
		return KindWalking
	}
	return KindOther
}

// summaryKeywords match anywhere in an instruction, so "Walk to bus stop" counts as a ride.
var summaryKeywords = []string{"take", "board", "subway", "bus"}

func mentionsRide(s Step) bool {
	text := strings.ToLower(s.Instruction)
	for _, k := range summaryKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// TransitSummary describes the transfers a transit route needs. Non-transit routes yield "".
func TransitSummary(r *Route) string {
	if r == nil || r.Mode != ModeTransit {
		return ""
	}
	rides := 0
	for _, s := range r.Steps {
		if mentionsRide(s) {
			rides++
		}
	}
	switch {
	case rides == 0:
		return "Public transit route"
	case rides == 1:
		return "Direct route, no transfers needed"
	default:
		return fmt.Sprintf("Transfers needed: %d", rides-1)
	}
}

package siri

import (
	"encoding/xml"
	"fmt"
	"log"
	"math"
	"strings"
)

// DelayThresholdMinutes is the minimum delay for an observation to be
// recorded. Delays below two minutes are business as usual, not delays.
const DelayThresholdMinutes = 2.0

const unknownName = "Ukjent"

// DelayRecord is one normalized delay observation emitted by the decoder.
type DelayRecord struct {
	Line         string
	Station      string
	Transport    string
	DelayMinutes float64
}

// DecodeError indicates the feed payload was not well-formed XML.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed vehicle monitoring feed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// trackedModes are the transport modes we record delays for. Anything
// else (ferry, "ukjent", ...) is skipped.
var trackedModes = map[string]bool{
	"bus":  true,
	"rail": true,
	"tram": true,
}

// DecodeDelays parses a SIRI vehicle-monitoring payload into delay
// records, keeping only tracked transport modes with a delay of at least
// DelayThresholdMinutes. A payload that is not well-formed XML returns a
// *DecodeError; individual entries missing fields are skipped or filled
// with fallbacks, never fatal.
func DecodeDelays(raw []byte, verbose bool) ([]DelayRecord, error) {
	var envelope Envelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}

	var delays []DelayRecord
	for _, activity := range envelope.Activities {
		journey := activity.Journey
		if journey == nil {
			continue
		}

		transport := strings.ToLower(journey.VehicleMode)
		if !trackedModes[transport] {
			continue
		}

		delayMinutes := 0.0
		if hasDurationPrefix(journey.Delay) {
			delayMinutes = ParseDelayMinutes(journey.Delay)
		}
		if delayMinutes < DelayThresholdMinutes {
			continue
		}

		line := journey.PublishedLineName
		if line == "" {
			line = journey.LineRef
		}
		if line == "" {
			line = unknownName
		}

		station := unknownName
		if journey.MonitoredCall != nil && journey.MonitoredCall.StopPointName != "" {
			station = journey.MonitoredCall.StopPointName
		}

		if verbose {
			// Destination is resolved for the log line only, it is not
			// part of the stored record.
			destination := unknownName
			if journey.MonitoredCall != nil && journey.MonitoredCall.DestinationDisplay != "" {
				destination = journey.MonitoredCall.DestinationDisplay
			} else if journey.DestinationName != "" {
				destination = journey.DestinationName
			}
			log.Printf("[%s] line=%s station=%s destination=%s delay=%.1f min",
				transport, line, station, destination, delayMinutes)
		}

		delays = append(delays, DelayRecord{
			Line:         line,
			Station:      station,
			Transport:    transport,
			DelayMinutes: math.Round(delayMinutes*100) / 100,
		})
	}

	return delays, nil
}

func hasDurationPrefix(s string) bool {
	return strings.HasPrefix(s, "PT")
}

package siri

import "encoding/xml"

// Envelope is the top-level SIRI response document. Only the elements the
// decoder needs are mapped; everything else in the feed is ignored.
type Envelope struct {
	XMLName    xml.Name          `xml:"Siri"`
	Activities []VehicleActivity `xml:"ServiceDelivery>VehicleMonitoringDelivery>VehicleActivity"`
}

// VehicleActivity describes one in-transit vehicle in the feed.
type VehicleActivity struct {
	Journey *MonitoredVehicleJourney `xml:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney carries the journey-level fields: transport
// mode, delay duration and the line/destination naming fallbacks.
type MonitoredVehicleJourney struct {
	VehicleMode       string         `xml:"VehicleMode"`
	Delay             string         `xml:"Delay"`
	LineRef           string         `xml:"LineRef"`
	PublishedLineName string         `xml:"PublishedLineName"`
	DestinationName   string         `xml:"DestinationName"`
	MonitoredCall     *MonitoredCall `xml:"MonitoredCall"`
}

// MonitoredCall is the stop the vehicle is currently at or approaching.
type MonitoredCall struct {
	StopPointName      string `xml:"StopPointName"`
	DestinationDisplay string `xml:"DestinationDisplay"`
}

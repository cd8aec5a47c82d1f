package models

// StationDetails describes one railway station with location and naming.
type StationDetails struct {
	AtID         string `json:"@id"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Longitude    Float  `json:"locationX"`
	Latitude     Float  `json:"locationY"`
	StandardName string `json:"standardname"`
}

// VehicleInfo identifies a train and its current location.
type VehicleInfo struct {
	Name      string `json:"name"`
	ShortName string `json:"shortname"`
	Number    string `json:"number"`
	Type      string `json:"type"`
	Longitude Float  `json:"locationX"`
	Latitude  Float  `json:"locationY"`
	AtID      string `json:"@id"`
}

// PlatformInfo names a platform and whether it is the scheduled one.
type PlatformInfo struct {
	Name   string `json:"name"`
	Normal Bool   `json:"normal"`
}

// Occupancy is the crowding level reported for a departure.
type Occupancy struct {
	AtID string `json:"@id"`
	Name string `json:"name"` // low, medium, high or unknown
}

// StationsResponse holds the full station list.
type StationsResponse struct {
	Version   string           `json:"version"`
	Timestamp Timestamp        `json:"timestamp"`
	Stations  []StationDetails `json:"station"`
}

// LiveboardDeparture is one departure row on a liveboard.
type LiveboardDeparture struct {
	ID                  string         `json:"id"`
	Station             string         `json:"station"`
	StationInfo         StationDetails `json:"stationinfo"`
	Time                Timestamp      `json:"time"`
	Delay               Int            `json:"delay"`
	Canceled            Bool           `json:"canceled"`
	Left                Bool           `json:"left"`
	IsExtra             Bool           `json:"isExtra"`
	Vehicle             string         `json:"vehicle"`
	VehicleInfo         VehicleInfo    `json:"vehicleinfo"`
	Platform            string         `json:"platform"`
	PlatformInfo        PlatformInfo   `json:"platforminfo"`
	Occupancy           Occupancy      `json:"occupancy"`
	DepartureConnection string         `json:"departureConnection"`
}

// LiveboardArrival is one arrival row on a liveboard.
type LiveboardArrival struct {
	ID                  string         `json:"id"`
	Station             string         `json:"station"`
	StationInfo         StationDetails `json:"stationinfo"`
	Time                Timestamp      `json:"time"`
	Delay               Int            `json:"delay"`
	Canceled            Bool           `json:"canceled"`
	Arrived             Bool           `json:"arrived"`
	IsExtra             Bool           `json:"isExtra"`
	Vehicle             string         `json:"vehicle"`
	VehicleInfo         VehicleInfo    `json:"vehicleinfo"`
	Platform            string         `json:"platform"`
	PlatformInfo        PlatformInfo   `json:"platforminfo"`
	DepartureConnection string         `json:"departureConnection"`
}

// Departures wraps the liveboard departure list.
type Departures struct {
	Number    Int                  `json:"number"`
	Departure []LiveboardDeparture `json:"departure"`
}

// Arrivals wraps the liveboard arrival list.
type Arrivals struct {
	Number  Int                `json:"number"`
	Arrival []LiveboardArrival `json:"arrival"`
}

// LiveboardResponse is the liveboard for one station; exactly one of
// Departures and Arrivals is populated depending on the arrdep parameter.
type LiveboardResponse struct {
	Version     string         `json:"version"`
	Timestamp   Timestamp      `json:"timestamp"`
	Station     string         `json:"station"`
	StationInfo StationDetails `json:"stationinfo"`
	Departures  *Departures    `json:"departures,omitempty"`
	Arrivals    *Arrivals      `json:"arrivals,omitempty"`
}

// Direction names where a connection is headed.
type Direction struct {
	Name string `json:"name"`
}

// ConnectionStop is one intermediate stop within a connection leg.
type ConnectionStop struct {
	ID                     string         `json:"id"`
	Station                string         `json:"station"`
	StationInfo            StationDetails `json:"stationinfo"`
	ScheduledArrivalTime   Timestamp      `json:"scheduledArrivalTime"`
	ArrivalCanceled        Bool           `json:"arrivalCanceled"`
	Arrived                Bool           `json:"arrived"`
	ScheduledDepartureTime Timestamp      `json:"scheduledDepartureTime"`
	ArrivalDelay           Int            `json:"arrivalDelay"`
	DepartureDelay         Int            `json:"departureDelay"`
	DepartureCanceled      Bool           `json:"departureCanceled"`
	Left                   Bool           `json:"left"`
	IsExtraStop            Bool           `json:"isExtraStop"`
	Platform               string         `json:"platform"`
	PlatformInfo           PlatformInfo   `json:"platforminfo"`
}

// ConnectionStops wraps a leg's stop list.
type ConnectionStops struct {
	Number Int              `json:"number"`
	Stop   []ConnectionStop `json:"stop"`
}

// ConnectionDeparture describes the departure side of a connection leg.
type ConnectionDeparture struct {
	Delay               Int              `json:"delay"`
	Station             string           `json:"station"`
	StationInfo         StationDetails   `json:"stationinfo"`
	Time                Timestamp        `json:"time"`
	Vehicle             string           `json:"vehicle"`
	VehicleInfo         VehicleInfo      `json:"vehicleinfo"`
	Platform            string           `json:"platform"`
	PlatformInfo        PlatformInfo     `json:"platforminfo"`
	Canceled            Bool             `json:"canceled"`
	DepartureConnection string           `json:"departureConnection"`
	Direction           Direction        `json:"direction"`
	Left                Bool             `json:"left"`
	Walking             Bool             `json:"walking"`
	Occupancy           Occupancy        `json:"occupancy"`
	Stops               *ConnectionStops `json:"stops,omitempty"`
}

// ConnectionArrival describes the arrival side of a connection leg.
type ConnectionArrival struct {
	Delay               Int            `json:"delay"`
	Station             string         `json:"station"`
	StationInfo         StationDetails `json:"stationinfo"`
	Time                Timestamp      `json:"time"`
	Vehicle             string         `json:"vehicle"`
	VehicleInfo         VehicleInfo    `json:"vehicleinfo"`
	Platform            string         `json:"platform"`
	PlatformInfo        PlatformInfo   `json:"platforminfo"`
	Canceled            Bool           `json:"canceled"`
	Direction           Direction      `json:"direction"`
	Arrived             Bool           `json:"arrived"`
	Walking             Bool           `json:"walking"`
	DepartureConnection string         `json:"departureConnection"`
}

// Via is one intermediate transfer within a connection.
type Via struct {
	ID          string              `json:"id"`
	Arrival     ConnectionArrival   `json:"arrival"`
	Departure   ConnectionDeparture `json:"departure"`
	TimeBetween Int                 `json:"timebetween"`
	Station     string              `json:"station"`
	StationInfo StationDetails      `json:"stationinfo"`
	Vehicle     string              `json:"vehicle"`
	VehicleInfo VehicleInfo         `json:"vehicleinfo"`
}

// Vias wraps a connection's transfer list.
type Vias struct {
	Number Int   `json:"number"`
	Via    []Via `json:"via"`
}

// Remark is free-form commentary attached to a connection.
type Remark struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Remarks wraps a connection's remark list.
type Remarks struct {
	Number Int      `json:"number"`
	Remark []Remark `json:"remark"`
}

// Alert is a service alert attached to a connection.
type Alert struct {
	ID          string    `json:"id"`
	Header      string    `json:"header"`
	Description string    `json:"description"`
	Lead        string    `json:"lead"`
	StartTime   Timestamp `json:"startTime"`
	EndTime     Timestamp `json:"endTime"`
	Link        string    `json:"link,omitempty"`
}

// Alerts wraps a connection's alert list.
type Alerts struct {
	Number Int     `json:"number"`
	Alert  []Alert `json:"alert"`
}

// Connection is one possible journey between two stations.
type Connection struct {
	ID        string              `json:"id"`
	Departure ConnectionDeparture `json:"departure"`
	Arrival   ConnectionArrival   `json:"arrival"`
	Duration  Int                 `json:"duration"`
	Remarks   *Remarks            `json:"remarks,omitempty"`
	Alerts    *Alerts             `json:"alerts,omitempty"`
	Vias      *Vias               `json:"vias,omitempty"`
}

// ConnectionsResponse holds the connections between two stations.
type ConnectionsResponse struct {
	Version     string       `json:"version"`
	Timestamp   Timestamp    `json:"timestamp"`
	Connections []Connection `json:"connection"`
}

// VehicleStop is one scheduled stop on a vehicle's journey.
type VehicleStop struct {
	ID                     string         `json:"id"`
	Station                string         `json:"station"`
	StationInfo            StationDetails `json:"stationinfo"`
	Time                   Timestamp      `json:"time"`
	Platform               string         `json:"platform"`
	PlatformInfo           PlatformInfo   `json:"platforminfo"`
	ScheduledDepartureTime Timestamp      `json:"scheduledDepartureTime"`
	ScheduledArrivalTime   Timestamp      `json:"scheduledArrivalTime"`
	Delay                  Int            `json:"delay"`
	Canceled               Bool           `json:"canceled"`
	DepartureDelay         Int            `json:"departureDelay"`
	DepartureCanceled      Bool           `json:"departureCanceled"`
	ArrivalDelay           Int            `json:"arrivalDelay"`
	ArrivalCanceled        Bool           `json:"arrivalCanceled"`
	Left                   Bool           `json:"left"`
	Arrived                Bool           `json:"arrived"`
	IsExtraStop            Bool           `json:"isExtraStop"`
	Occupancy              *Occupancy     `json:"occupancy,omitempty"`
	DepartureConnection    string         `json:"departureConnection,omitempty"`
}

// VehicleStops wraps a vehicle's stop list.
type VehicleStops struct {
	Number Int           `json:"number"`
	Stop   []VehicleStop `json:"stop"`
}

// VehicleResponse describes one train and its stops.
type VehicleResponse struct {
	Version     string       `json:"version"`
	Timestamp   Timestamp    `json:"timestamp"`
	Vehicle     string       `json:"vehicle"`
	VehicleInfo VehicleInfo  `json:"vehicleinfo"`
	Stops       VehicleStops `json:"stops"`
}

// MaterialType identifies the rolling stock of a train unit.
type MaterialType struct {
	ParentType  string `json:"parent_type"`
	SubType     string `json:"sub_type"`
	Orientation string `json:"orientation"` // LEFT or RIGHT
}

// Unit is one carriage or motor unit within a train composition.
type Unit struct {
	ID                            string       `json:"id"`
	MaterialType                  MaterialType `json:"materialType"`
	HasToilets                    Bool         `json:"hasToilets"`
	HasSecondClassOutlets         Bool         `json:"hasSecondClassOutlets"`
	HasFirstClassOutlets          Bool         `json:"hasFirstClassOutlets"`
	HasHeating                    Bool         `json:"hasHeating"`
	HasAirco                      Bool         `json:"hasAirco"`
	TractionType                  string       `json:"tractionType"`
	CanPassToNextUnit             Bool         `json:"canPassToNextUnit"`
	SeatsFirstClass               Int          `json:"seatsFirstClass"`
	SeatsCoupeFirstClass          Int          `json:"seatsCoupeFirstClass"`
	StandingPlacesFirstClass      Int          `json:"standingPlacesFirstClass"`
	SeatsSecondClass              Int          `json:"seatsSecondClass"`
	SeatsCoupeSecondClass         Int          `json:"seatsCoupeSecondClass"`
	StandingPlacesSecondClass     Int          `json:"standingPlacesSecondClass"`
	LengthInMeter                 Int          `json:"lengthInMeter"`
	HasSemiAutomaticInteriorDoors Bool         `json:"hasSemiAutomaticInteriorDoors"`
	TractionPosition              Int          `json:"tractionPosition"`
	HasPrmSection                 Bool         `json:"hasPrmSection"`
	HasPriorityPlaces             Bool         `json:"hasPriorityPlaces"`
	HasBikeSection                Bool         `json:"hasBikeSection"`
}

// Units wraps a segment's unit list.
type Units struct {
	Number Int    `json:"number"`
	Unit   []Unit `json:"unit"`
}

// SegmentComposition is the set of units running one segment.
type SegmentComposition struct {
	Source string `json:"source"`
	Units  Units  `json:"units"`
}

// Segment is one leg of a train's journey with its composition.
type Segment struct {
	ID          string             `json:"id"`
	Origin      StationDetails     `json:"origin"`
	Destination StationDetails     `json:"destination"`
	Composition SegmentComposition `json:"composition"`
}

// Segments wraps the segment list.
type Segments struct {
	Number  Int       `json:"number"`
	Segment []Segment `json:"segment"`
}

// CompositionDetail nests the segment list, mirroring the upstream shape.
type CompositionDetail struct {
	Segments Segments `json:"segments"`
}

// CompositionResponse holds the composition of one train.
type CompositionResponse struct {
	Version     string            `json:"version"`
	Timestamp   Timestamp         `json:"timestamp"`
	Composition CompositionDetail `json:"composition"`
}

// DescriptionLink is a hyperlink embedded in a disturbance description.
type DescriptionLink struct {
	ID   string `json:"id"`
	Link string `json:"link"`
	Text string `json:"text"`
}

// DescriptionLinks wraps a disturbance's link list.
type DescriptionLinks struct {
	Number          Int               `json:"number"`
	DescriptionLink []DescriptionLink `json:"descriptionLink"`
}

// Disturbance is one current or planned disruption on the network.
type Disturbance struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Type             string            `json:"type"` // disturbance or planned
	Link             string            `json:"link"`
	Timestamp        Timestamp         `json:"timestamp"`
	RichText         string            `json:"richtext"`
	DescriptionLinks *DescriptionLinks `json:"descriptionLinks,omitempty"`
}

// DisturbancesResponse holds the current disturbance list.
type DisturbancesResponse struct {
	Version      string        `json:"version"`
	Timestamp    Timestamp     `json:"timestamp"`
	Disturbances []Disturbance `json:"disturbance"`
}

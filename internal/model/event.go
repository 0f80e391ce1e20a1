package model

// EventType identifies the push event kind.
type EventType string

// EventNewOpportunities is sent after a pipeline pass that produced at least
// one new or updated deal.
const EventNewOpportunities EventType = "new_opportunities"

// Event is the envelope pushed to live subscribers.
type Event struct {
	Type EventType `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the deals touched by a pass.
type EventData struct {
	Count int           `json:"count"`
	Deals []DealSummary `json:"deals"`
}

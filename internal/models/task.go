package models

import "time"

// Counters holds the numeric activity counters of a task entry.
type Counters struct {
	Hours                  Counter `json:"hours"`
	Calls                  Counter `json:"calls"`
	SpokeTo                Counter `json:"spokeTo"`
	ListingApptsSet        Counter `json:"listingApptsSet"`
	ListingApptsHeld       Counter `json:"listingApptsHeld"`
	ListingContractsSigned Counter `json:"listingContractsSigned"`
	BuyerApptsSet          Counter `json:"buyerApptsSet"`
	BuyerApptsHeld         Counter `json:"buyerApptsHeld"`
	BuyerContractsSigned   Counter `json:"buyerContractsSigned"`
	Closings               Counter `json:"closings"`
}

// TaskFields is everything a client supplies when logging activity.
type TaskFields struct {
	Date      Day    `json:"date"`
	AgentName string `json:"agentName"`
	TaskType  string `json:"taskType"`
	Counters
}

// Task is one logged activity entry. Tasks are append-only.
type Task struct {
	ID string `json:"id"`
	TaskFields
	CreatedAt time.Time `json:"timestamp"`
}

// DefaultTaskType is preselected on the entry form.
const DefaultTaskType = "Prospecting"

// TaskTypes are the types offered by the entry form. Stored types are not restricted to these.
var TaskTypes = []string{ //nolint:gochecknoglobals // static option list
	"Prospecting",
	"Follow Up",
	"Open Houses",
	"Social Posts",
	"Email Campaigns",
}

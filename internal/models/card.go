package models

// Card is a tracking-board card as returned by the board-wide card listing.
type Card struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc"`
	IDList   string   `json:"idList"`
	IDLabels []string `json:"idLabels,omitempty"`
}

// Label is a tracking-board label.
type Label struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	IDBoard string `json:"idBoard,omitempty"`
}

// Board is the subset of board metadata used by the connection test.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Status label names. A card carries at most one of these.
const (
	LabelDelivering      = "DELIVERING"
	LabelCancelRequested = "CANCEL REQUESTED"
	LabelDelivered       = "DELIVERED"
	LabelCompleted       = "COMPLETED"
	LabelCancelled       = "CANCELLED"
)

// StatusLabels is the closed set of status labels with their board colors.
var StatusLabels = []Label{
	{Name: LabelDelivering, Color: "blue"},
	{Name: LabelCancelRequested, Color: "orange"},
	{Name: LabelDelivered, Color: "green"},
	{Name: LabelCompleted, Color: "purple"},
	{Name: LabelCancelled, Color: "red"},
}

package checklist

// Status of a single checklist item.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// Priority of a checklist item. Optional: items without one keep it empty.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityMed  Priority = "med"
	PriorityLow  Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMed || p == PriorityLow
}

// Item is one checkable task.
type Item struct {
	ID              string   `json:"id"`
	GroupKey        string   `json:"group_key"`
	Text            string   `json:"text"`
	Status          Status   `json:"status"`
	Priority        Priority `json:"priority,omitempty"`
	EstimateMinutes *int     `json:"estimate_minutes,omitempty"`
	Rationale       string   `json:"rationale,omitempty"`
}

// Group is one of the five fixed readiness dimensions.
type Group struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Document is a complete readiness checklist. Groups always holds exactly
// the five dimensions in canonical order, empty ones included.
type Document struct {
	Title        string   `json:"title"`
	EventType    string   `json:"event_type"`
	Assumptions  []string `json:"assumptions"`
	Groups       []Group  `json:"groups"`
	Next3Actions []string `json:"next_3_actions"`
}

// groupOrder fixes the canonical group sequence; groupLabels maps each key
// to its display label.
var groupOrder = []string{"context", "skills", "evidence", "delivery", "logistics"}

var groupLabels = map[string]string{
	"context":   "Context Understanding",
	"skills":    "Skills / Knowledge Prep",
	"evidence":  "Evidence & Examples",
	"delivery":  "Delivery & Execution",
	"logistics": "Logistics & Risk",
}

// FindItem locates an item by id across all groups.
func (d *Document) FindItem(id string) (*Item, *Group) {
	for gi := range d.Groups {
		g := &d.Groups[gi]
		for ii := range g.Items {
			if g.Items[ii].ID == id {
				return &g.Items[ii], g
			}
		}
	}
	return nil, nil
}

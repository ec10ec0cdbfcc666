package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
)

// counterField describes one counter input. Label is used on the form, Short on the detail page.
type counterField struct {
	Key   string
	Label string
	Short string
	ref   func(*models.Counters) *models.Counter
}

type counterGroup struct {
	Form   string
	Detail string
	Fields []counterField
}

var counterGroups = []counterGroup{ //nolint:gochecknoglobals // static form layout
	{
		Fields: []counterField{
			{"hours", "Hours", "Hours", func(c *models.Counters) *models.Counter { return &c.Hours }},
			{"calls", "Calls", "Calls", func(c *models.Counters) *models.Counter { return &c.Calls }},
			{"spokeTo", "Spoke To", "Spoke To", func(c *models.Counters) *models.Counter { return &c.SpokeTo }},
			{"closings", "Closings", "Closings", func(c *models.Counters) *models.Counter { return &c.Closings }},
		},
	},
	{
		Form:   "Listing Appointments",
		Detail: "Listing Details",
		Fields: []counterField{
			{"listingApptsSet", "Listing Appts Set", "Appts Set",
				func(c *models.Counters) *models.Counter { return &c.ListingApptsSet }},
			{"listingApptsHeld", "Listing Appts Held", "Appts Held",
				func(c *models.Counters) *models.Counter { return &c.ListingApptsHeld }},
			{"listingContractsSigned", "Listing Contracts Signed", "Contracts Signed",
				func(c *models.Counters) *models.Counter { return &c.ListingContractsSigned }},
		},
	},
	{
		Form:   "Buyer Appointments",
		Detail: "Buyer Details",
		Fields: []counterField{
			{"buyerApptsSet", "Buyer Appts Set", "Appts Set",
				func(c *models.Counters) *models.Counter { return &c.BuyerApptsSet }},
			{"buyerApptsHeld", "Buyer Appts Held", "Appts Held",
				func(c *models.Counters) *models.Counter { return &c.BuyerApptsHeld }},
			{"buyerContractsSigned", "Buyer Contracts Signed", "Contracts Signed",
				func(c *models.Counters) *models.Counter { return &c.BuyerContractsSigned }},
		},
	},
}

// taskForm keeps the raw input so a rejected submission re-renders what the user typed.
type taskForm struct {
	Date      string
	AgentName string
	TaskType  string
	Values    map[string]string
}

func newTaskForm(now time.Time, agent string) taskForm {
	if agent == report.AllAgents {
		agent = ""
	}
	return taskForm{
		Date:      models.NewDay(now).String(),
		AgentName: agent,
		TaskType:  models.DefaultTaskType,
		Values:    map[string]string{},
	}
}

func taskFormFrom(values func(string) string) taskForm {
	form := taskForm{
		Date:      strings.TrimSpace(values("date")),
		AgentName: values("agentName"),
		TaskType:  values("taskType"),
		Values:    map[string]string{},
	}
	for _, group := range counterGroups {
		for _, field := range group.Fields {
			form.Values[field.Key] = values(field.Key)
		}
	}
	return form
}

// fields converts the form. Counters are coerced, so only the date can fail.
func (f taskForm) fields() (models.TaskFields, error) {
	fields := models.TaskFields{AgentName: f.AgentName, TaskType: f.TaskType}
	if f.Date != "" {
		day, err := models.ParseDay(f.Date)
		if err != nil {
			return fields, fmt.Errorf("%w: %w", models.ErrInvalidInput, err)
		}
		fields.Date = day
	}
	for _, group := range counterGroups {
		for _, field := range group.Fields {
			*field.ref(&fields.Counters) = models.ParseCounter(f.Values[field.Key])
		}
	}
	return fields, nil
}

type goalField struct {
	Key   string
	Label string
	ref   func(*models.GoalFields) **float64
}

var goalFields = []goalField{ //nolint:gochecknoglobals // static form layout
	{"calls", "Calls", func(g *models.GoalFields) **float64 { return &g.Calls }},
	{"spokeTo", "Spoke To", func(g *models.GoalFields) **float64 { return &g.SpokeTo }},
	{"apptsSet", "Appts Set", func(g *models.GoalFields) **float64 { return &g.ApptsSet }},
	{"hours", "Hours", func(g *models.GoalFields) **float64 { return &g.Hours }},
}

type goalForm struct {
	AgentName string
	Values    map[string]string
}

// goalFormFor prefills the form with the stored targets.
func goalFormFor(agent string, goal *models.Goal) goalForm {
	form := goalForm{AgentName: agent, Values: map[string]string{}}
	if goal == nil {
		return form
	}
	for _, field := range goalFields {
		if v := *field.ref(&goal.GoalFields); v != nil {
			form.Values[field.Key] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	return form
}

func goalFormFrom(values func(string) string) goalForm {
	form := goalForm{AgentName: values("agent"), Values: map[string]string{}}
	for _, field := range goalFields {
		form.Values[field.Key] = values(field.Key)
	}
	return form
}

// fields converts the form. An empty input leaves the stored target unchanged.
func (f goalForm) fields() (models.GoalFields, error) {
	var fields models.GoalFields
	for _, field := range goalFields {
		raw := strings.TrimSpace(f.Values[field.Key])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fields, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, field.Label)
		}
		*field.ref(&fields) = &v
	}
	return fields, nil
}

type detailItem struct {
	Label string
	Value models.Counter
}

type detailSection struct {
	Title string
	Items []detailItem
}

func detailSections(task *models.Task) []detailSection {
	if task == nil {
		return nil
	}
	sections := make([]detailSection, 0, len(counterGroups))
	for _, group := range counterGroups {
		section := detailSection{Title: group.Detail}
		for _, field := range group.Fields {
			section.Items = append(section.Items, detailItem{Label: field.Short, Value: *field.ref(&task.Counters)})
		}
		sections = append(sections, section)
	}
	return sections
}

// dashboardURL links back to the dashboard with the selection preserved.
func dashboardURL(agent string, year int, warning string) string {
	query := url.Values{}
	if agent != "" && agent != report.AllAgents {
		query.Set("agent", agent)
	}
	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}
	if warning != "" {
		query.Set("warning", warning)
	}
	if len(query) == 0 {
		return "/"
	}
	return "/?" + query.Encode()
}

// Package report aggregates task entries into monthly and year-to-date rollups
// and compares them with prorated annual goals. Everything here is pure.
package report

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/UnknownOlympus/plutus/internal/models"
)

// AllAgents selects every task regardless of agent.
const AllAgents = "All Agents"

const (
	monthsInYear = 12
	// displayScale keeps two decimal places in rendered numbers.
	displayScale = 100
)

// Month is the rollup of a single calendar month.
type Month struct {
	Month           time.Month `json:"month"`
	Label           string     `json:"label"`
	Hours           float64    `json:"hours"`
	Calls           float64    `json:"calls"`
	SpokeTo         float64    `json:"spokeTo"`
	ListingApptsSet float64    `json:"listingApptsSet"`
	BuyerApptsSet   float64    `json:"buyerApptsSet"`
}

// Totals are the four goal-tracked metrics.
type Totals struct {
	Calls    float64 `json:"calls"`
	SpokeTo  float64 `json:"spokeTo"`
	ApptsSet float64 `json:"apptsSet"`
	Hours    float64 `json:"hours"`
}

// Targets are annual goals scaled to the elapsed part of the year.
type Targets struct {
	Totals
	MonthsPassed int `json:"monthsPassed"`
}

// Report is everything the dashboard shows for one agent and year.
type Report struct {
	Agent   string  `json:"agent"`
	Year    int     `json:"year"`
	Months  []Month `json:"months"`
	YTD     Totals  `json:"ytd"`
	Goals   Targets `json:"goals"`
	Delta   Totals  `json:"delta"`
	HasGoal bool    `json:"hasGoal"`

	// Selector options and the task list of the selected agent.
	Agents []string      `json:"agents"`
	Years  []int         `json:"years"`
	Tasks  []models.Task `json:"tasks"`
}

// MonthlyRollup returns exactly twelve rollups, January first, for tasks dated in year.
func MonthlyRollup(tasks []models.Task, year int) []Month {
	months := make([]Month, monthsInYear)
	for i := range months {
		m := time.Month(i + 1)
		months[i] = Month{Month: m, Label: m.String()[:3]}
	}

	for _, task := range tasks {
		if task.Date.Year() != year {
			continue
		}
		bucket := &months[task.Date.Month()-1]
		bucket.Hours += task.Hours.Float()
		bucket.Calls += task.Calls.Float()
		bucket.SpokeTo += task.SpokeTo.Float()
		bucket.ListingApptsSet += task.ListingApptsSet.Float()
		bucket.BuyerApptsSet += task.BuyerApptsSet.Float()
	}

	return months
}

// YearToDate sums the goal-tracked metrics over all tasks dated in year.
func YearToDate(tasks []models.Task, year int) Totals {
	var totals Totals
	for _, task := range tasks {
		if task.Date.Year() != year {
			continue
		}
		totals.Calls += task.Calls.Float()
		totals.SpokeTo += task.SpokeTo.Float()
		totals.ApptsSet += task.ListingApptsSet.Float() + task.BuyerApptsSet.Float()
		totals.Hours += task.Hours.Float()
	}
	return totals
}

// ProrateGoals scales annual goals to the months elapsed in year as seen from now.
// The current year counts months through the current one; any other year counts as complete.
// Results are rounded half up. A nil goal yields zero targets.
func ProrateGoals(goals *models.GoalFields, year int, now time.Time) Targets {
	monthsPassed := monthsInYear
	if year == now.Year() {
		monthsPassed = int(now.Month())
	}

	targets := Targets{MonthsPassed: monthsPassed}
	if goals == nil {
		return targets
	}

	scale := func(v *float64) float64 {
		return roundHalfUp(models.Value(v) * float64(monthsPassed) / monthsInYear)
	}
	targets.Calls = scale(goals.Calls)
	targets.SpokeTo = scale(goals.SpokeTo)
	targets.ApptsSet = scale(goals.ApptsSet)
	targets.Hours = scale(goals.Hours)

	return targets
}

// CompareToGoal returns actual minus goal. Negative means behind.
func CompareToGoal(actual, goal float64) float64 {
	return actual - goal
}

// Compare applies CompareToGoal to every tracked metric.
func Compare(actual Totals, goal Targets) Totals {
	return Totals{
		Calls:    CompareToGoal(actual.Calls, goal.Calls),
		SpokeTo:  CompareToGoal(actual.SpokeTo, goal.SpokeTo),
		ApptsSet: CompareToGoal(actual.ApptsSet, goal.ApptsSet),
		Hours:    CompareToGoal(actual.Hours, goal.Hours),
	}
}

// FormatNumber renders v rounded to two decimal places without trailing zeros.
// Negative zero and values that round to zero render as "0".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(roundDisplay(v), 'f', -1, 64)
}

// FormatDelta renders a difference as "+N" or "-N", rounded like FormatNumber.
func FormatDelta(delta float64) string {
	delta = roundDisplay(delta)
	s := strconv.FormatFloat(delta, 'f', -1, 64)
	if delta >= 0 {
		return "+" + s
	}
	return s
}

func roundDisplay(v float64) float64 {
	v = math.Round(v*displayScale) / displayScale
	if v == 0 {
		return 0
	}
	return v
}

// FilterByAgent keeps the tasks of agent, or all of them for AllAgents.
// Names match exactly.
func FilterByAgent(tasks []models.Task, agent string) []models.Task {
	if agent == AllAgents || agent == "" {
		return tasks
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.AgentName == agent {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// Agents lists AllAgents followed by the distinct agent names in tasks, sorted.
func Agents(tasks []models.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task.AgentName]; ok {
			continue
		}
		seen[task.AgentName] = struct{}{}
		names = append(names, task.AgentName)
	}
	slices.Sort(names)
	return append([]string{AllAgents}, names...)
}

// Years lists the distinct years of task dates, newest first.
// fallback is included so the selected year is always listed.
func Years(tasks []models.Task, fallback int) []int {
	years := []int{fallback}
	for _, task := range tasks {
		if task.Date.IsZero() {
			continue
		}
		if y := task.Date.Year(); !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// Build composes the full report for agent and year. goal may be nil.
func Build(tasks []models.Task, agent string, year int, goal *models.Goal, now time.Time) Report {
	if agent == "" {
		agent = AllAgents
	}
	selected := FilterByAgent(tasks, agent)

	var fields *models.GoalFields
	if goal != nil && agent != AllAgents {
		fields = &goal.GoalFields
	}

	ytd := YearToDate(selected, year)
	targets := ProrateGoals(fields, year, now)

	return Report{
		Agent:   agent,
		Year:    year,
		Months:  MonthlyRollup(selected, year),
		YTD:     ytd,
		Goals:   targets,
		Delta:   Compare(ytd, targets),
		HasGoal: fields != nil,
		Agents:  Agents(tasks),
		Years:   Years(tasks, year),
		Tasks:   selected,
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5) //nolint:mnd // half
}

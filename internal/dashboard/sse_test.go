package dashboard_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLive delivers snapshots the way the database listener does: the current one on
// subscribe, then every pushed one.
type fakeLive struct {
	mu       sync.Mutex
	nextID   int
	tasks    []models.Task
	goals    map[string]*models.Goal
	taskSubs map[int]func([]models.Task)
	goalSubs map[int]func(*models.Goal)
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		goals:    map[string]*models.Goal{},
		taskSubs: map[int]func([]models.Task){},
		goalSubs: map[int]func(*models.Goal){},
	}
}

func (f *fakeLive) SubscribeTasks(_ context.Context, onUpdate func([]models.Task)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	onUpdate(f.tasks)
	subID := f.nextID
	f.nextID++
	f.taskSubs[subID] = onUpdate
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.taskSubs, subID)
	}, nil
}

func (f *fakeLive) SubscribeGoal(_ context.Context, agentName string, onUpdate func(*models.Goal)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	onUpdate(f.goals[agentName])
	subID := f.nextID
	f.nextID++
	f.goalSubs[subID] = onUpdate
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.goalSubs, subID)
	}, nil
}

func (f *fakeLive) pushTasks(tasks []models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tasks = tasks
	for _, onUpdate := range f.taskSubs {
		onUpdate(tasks)
	}
}

func (f *fakeLive) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taskSubs) + len(f.goalSubs)
}

// nextReport reads events until a report satisfies match.
func nextReport(t *testing.T, reader *bufio.Reader, match func(report.Report) bool) report.Report {
	t.Helper()

	var event string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && event == "report":
			var rep report.Report
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &rep))
			if match(rep) {
				return rep
			}
		}
	}
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	f.live.tasks = sampleTasks(t)
	f.live.goals["Jane"] = &models.Goal{AgentName: "Jane", GoalFields: models.GoalFields{Calls: ptr(120)}}

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?agent=Jane&year=2024", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	initial := nextReport(t, reader, func(r report.Report) bool { return r.HasGoal })
	assert.Equal(t, "Jane", initial.Agent)
	assert.InDelta(t, 50.0, initial.YTD.Calls, 1e-9)
	assert.InDelta(t, 40.0, initial.Goals.Calls, 1e-9)

	added := append(sampleTasks(t), models.Task{ID: "t-3", TaskFields: models.TaskFields{
		Date: day(t, "2024-04-01"), AgentName: "Jane", Counters: models.Counters{Calls: 15},
	}})
	f.live.pushTasks(added)

	updated := nextReport(t, reader, func(r report.Report) bool { return r.YTD.Calls == 65 })
	assert.InDelta(t, 25.0, updated.Delta.Calls, 1e-9)
	assert.InDelta(t, 15.0, updated.Months[time.April-1].Calls, 1e-9)
	assert.Equal(t, []string{report.AllAgents, "Bob", "Jane"}, updated.Agents)
	require.Len(t, updated.Tasks, 3)
	assert.Equal(t, "t-3", updated.Tasks[2].ID)

	cancel()
	assert.Eventually(t, func() bool { return f.live.subscriptions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEvents_AllAgentsSkipsGoals(t *testing.T) {
	f := newFixture(t)
	f.live.tasks = sampleTasks(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?year=2024", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	rep := nextReport(t, bufio.NewReader(resp.Body), func(report.Report) bool { return true })
	assert.Equal(t, report.AllAgents, rep.Agent)
	assert.False(t, rep.HasGoal)
	assert.InDelta(t, 50.0, rep.YTD.Calls, 1e-9)

	f.live.mu.Lock()
	assert.Empty(t, f.live.goalSubs)
	f.live.mu.Unlock()
}

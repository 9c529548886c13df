package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmforge/swarmforge"
	"github.com/swarmforge/swarmforge/core"
)

func newTestServer() *httptest.Server {
	s := New(swarmforge.New())
	return httptest.NewServer(s.Handler())
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp
}

func postJSON(t *testing.T, url string, payload any, into any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got map[string]string
	resp := getJSON(t, srv.URL+"/health", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", got["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_AddAndListAgents(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var added map[string]string
	resp := postJSON(t, srv.URL+"/api/agents/add", map[string]any{
		"name": "scout", "role": "researcher", "tools": []string{"web_search"},
	}, &added)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "added", added["status"])

	var listed struct {
		Agents []struct {
			Name       string   `json:"name"`
			Role       string   `json:"role"`
			Tools      []string `json:"tools"`
			State      string   `json:"state"`
			Executions int      `json:"executions"`
		} `json:"agents"`
	}
	getJSON(t, srv.URL+"/api/agents/list", &listed)
	require.Len(t, listed.Agents, 1)
	assert.Equal(t, "scout", listed.Agents[0].Name)
	assert.Equal(t, "researcher", listed.Agents[0].Role)
	assert.Equal(t, []string{"web_search"}, listed.Agents[0].Tools)
	assert.Equal(t, "idle", listed.Agents[0].State)
	assert.Zero(t, listed.Agents[0].Executions)
}

func TestServer_RemoveAgent(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var added map[string]string
	postJSON(t, srv.URL+"/api/agents/add", map[string]any{"name": "temp", "role": "executor"}, &added)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/agents/temp", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Agents []any `json:"agents"`
	}
	getJSON(t, srv.URL+"/api/agents/list", &listed)
	assert.Empty(t, listed.Agents)

	// Removing again is a 404, not a silent success.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_AddAgentRejectsUnknownRole(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got map[string]string
	resp := postJSON(t, srv.URL+"/api/agents/add", map[string]any{
		"name": "x", "role": "wizard",
	}, &got)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, got["detail"])
}

func TestServer_ExecuteSeedsDefaultAgents(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got struct {
		Status string `json:"status"`
		Task   string `json:"task"`
		Result struct {
			Agents map[string]struct {
				Status string `json:"status"`
				Result string `json:"result"`
			} `json:"agents"`
		} `json:"result"`
	}
	resp := postJSON(t, srv.URL+"/api/execute", map[string]any{
		"task": "investigate", "execution_mode": "parallel",
	}, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "investigate", got.Task)
	require.Len(t, got.Result.Agents, 3, "empty pool is seeded with three default agents")
	for name, slot := range got.Result.Agents {
		assert.Equal(t, "success", slot.Status, name)
	}
}

func TestServer_ExecuteRejectsEmptyTaskAndBadMode(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got map[string]string
	resp := postJSON(t, srv.URL+"/api/execute", map[string]any{"task": ""}, &got)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/execute", map[string]any{
		"task": "t", "execution_mode": "quantum",
	}, &got)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ExecutionHistory(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var execResp map[string]any
	postJSON(t, srv.URL+"/api/execute", map[string]any{"task": "t1"}, &execResp)
	postJSON(t, srv.URL+"/api/execute", map[string]any{"task": "t2"}, &execResp)

	var history struct {
		History []struct {
			Task string `json:"task"`
		} `json:"history"`
		Total int `json:"total"`
	}
	getJSON(t, srv.URL+"/api/execute/history?limit=1", &history)
	assert.Equal(t, 2, history.Total)
	require.Len(t, history.History, 1)
	assert.Equal(t, "t2", history.History[0].Task, "limit keeps the most recent record")
}

func TestServer_PipelineRun(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var state struct {
		Task     string `json:"task"`
		Status   string `json:"status"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	resp := postJSON(t, srv.URL+"/api/pipeline/run", map[string]any{"task": "digest"}, &state)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "digest", state.Task)
	assert.Equal(t, "completed", state.Status)
	assert.Len(t, state.Messages, 2)
}

func TestServer_MemoryEndpoints(t *testing.T) {
	forge := swarmforge.New()
	forge.Memory().StoreLongTerm("task_0", core.StringValue("done"), "tasks")
	srv := httptest.NewServer(New(forge).Handler())
	defer srv.Close()

	var stats struct {
		Memory struct {
			ShortTermSize      int      `json:"short_term_size"`
			LongTermCategories []string `json:"long_term_categories"`
			LongTermTotal      int      `json:"long_term_total"`
		} `json:"memory"`
	}
	getJSON(t, srv.URL+"/api/memory/stats", &stats)
	assert.Equal(t, 1, stats.Memory.LongTermTotal)
	assert.Equal(t, []string{"tasks"}, stats.Memory.LongTermCategories)

	var search struct {
		Query   string `json:"query"`
		Results []struct {
			Key string `json:"key"`
		} `json:"results"`
	}
	getJSON(t, srv.URL+"/api/memory/search?query=task&category=tasks", &search)
	assert.Equal(t, "task", search.Query)
	require.Len(t, search.Results, 1)
	assert.Equal(t, "task_0", search.Results[0].Key)

	// No hits still yields an empty list, not null.
	getJSON(t, srv.URL+"/api/memory/search?query=zzz&category=tasks", &search)
	assert.NotNil(t, search.Results)
	assert.Empty(t, search.Results)

	resp, err := http.Get(srv.URL + "/api/memory/search")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query is required")
}

func TestServer_EvaluationReport(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got map[string]string
	getJSON(t, srv.URL+"/api/evaluation/report", &got)
	assert.Equal(t, "No evaluations performed yet.", got["report"])
}

func TestServer_ListTools(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	getJSON(t, srv.URL+"/api/tools/list", &got)
	names := make([]string, 0, len(got.Tools))
	for _, tl := range got.Tools {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{
		"code_execution", "data_analysis", "file_operations", "memory_store", "web_search",
	}, names)
}

func TestServer_Status(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var got map[string]any
	getJSON(t, srv.URL+"/api/status", &got)
	assert.EqualValues(t, 0, got["pools"])
	assert.EqualValues(t, 0, got["execution_history_count"])
}

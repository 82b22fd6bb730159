package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const meetingJSON = `{"segments": [
  {"speaker": "A", "start": 0, "end": 4, "text": "good morning everyone thanks for coming"},
  {"speaker": "B", "start": 4.2, "end": 8, "text": "morning lets get started with updates"},
  {"speaker": "A", "start": 30, "end": 34, "text": "budget allocation is unfair"},
  {"speaker": "B", "start": 34.3, "end": 36, "text": "ok"},
  {"speaker": "B", "start": 36, "end": 40, "text": "the hiring plan is moving slowly this quarter"},
  {"speaker": "A", "start": 40.1, "end": 43, "text": "hiring takes time with interviews"},
  {"speaker": "B", "start": 60, "end": 64, "text": "the office relocation is scheduled for june"},
  {"speaker": "C", "start": 65, "end": 70, "text": "parking near the new office is limited"},
  {"speaker": "A", "start": 90, "end": 95, "text": "lunch options around there are great"},
  {"speaker": "C", "start": 200, "end": 205, "text": "the allocation of the budget seems unfair"},
  {"speaker": "B", "start": 206, "end": 210, "text": "yes the allocation of the budget is unfair"},
  {"speaker": "A", "start": 211, "end": 214, "text": "I raised the budget allocation earlier"}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) []byte {
	t.Helper()
	t.Setenv("TALKGRAPH_CONFIG", "")
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.Bytes()
}

func TestAnalyzeSaveAndQuery(t *testing.T) {
	src := writeFile(t, "meeting.json", meetingJSON)
	db := filepath.Join(t.TempDir(), "talkgraph.db")

	var saved struct {
		Run struct {
			ID        string `json:"id"`
			TurnCount int    `json:"turn_count"`
		} `json:"run"`
		Result struct {
			Topics []struct {
				ID   string `json:"topic_id"`
				Text string `json:"text"`
			} `json:"topics"`
		} `json:"result"`
	}
	if err := json.Unmarshal(execute(t, "analyze", src, "--save", "--db", db, "-f", "json", "--log-level", "warn"), &saved); err != nil {
		t.Fatalf("decode analyze output: %v", err)
	}
	if saved.Run.ID == "" || saved.Run.TurnCount != 11 || len(saved.Result.Topics) == 0 {
		t.Fatalf("saved = %+v", saved)
	}

	var runs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(execute(t, "runs", "--db", db, "-f", "json"), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != saved.Run.ID {
		t.Errorf("runs = %+v", runs)
	}

	var hits []struct {
		TopicID string `json:"topic_id"`
	}
	if err := json.Unmarshal(execute(t, "search", "budget", "--db", db, "-f", "json"), &hits); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(hits) < 2 {
		t.Errorf("expected both budget topics, got %+v", hits)
	}

	var links []struct {
		Rel string `json:"rel"`
	}
	if err := json.Unmarshal(execute(t, "links", saved.Run.ID, "--db", db, "-f", "json"), &links); err != nil {
		t.Fatalf("decode links: %v", err)
	}
	if len(links) == 0 || links[0].Rel != "recycled_as" {
		t.Errorf("links = %+v", links)
	}

	var ctxOut struct {
		Turns []struct {
			Index int `json:"turn_index"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(execute(t, "context", saved.Run.ID, hits[0].TopicID, "--db", db, "-f", "json"), &ctxOut); err != nil {
		t.Fatalf("decode context: %v", err)
	}
	if len(ctxOut.Turns) != 11 {
		t.Errorf("context turns = %d, want 11", len(ctxOut.Turns))
	}

	exported := writeFile(t, "export.json", string(execute(t, "export", "--db", db, "-f", "json")))
	other := filepath.Join(t.TempDir(), "other.db")
	out := execute(t, "import", exported, "--db", other, "-f", "json")
	if !strings.Contains(string(out), `"imported":1`) {
		t.Errorf("import output = %s", out)
	}
}

func TestAnnotateAndCompare(t *testing.T) {
	src := writeFile(t, "meeting.json", meetingJSON)
	db := filepath.Join(t.TempDir(), "talkgraph.db")

	var saved struct {
		Run struct {
			ID string `json:"id"`
		} `json:"run"`
		Result struct {
			Topics []struct {
				ID        string  `json:"topic_id"`
				StartTime float64 `json:"start_time"`
				EndTime   float64 `json:"end_time"`
				Status    string  `json:"status"`
			} `json:"topics"`
		} `json:"result"`
	}
	if err := json.Unmarshal(execute(t, "analyze", src, "--save", "--db", db, "-f", "json"), &saved); err != nil {
		t.Fatalf("decode analyze output: %v", err)
	}
	tp := saved.Result.Topics[0]

	anns, err := json.Marshal(map[string]interface{}{"annotations": []map[string]interface{}{{
		"topic_id":   tp.ID,
		"start_time": tp.StartTime,
		"end_time":   tp.EndTime,
		"status":     tp.Status,
		"confidence": "high",
	}}})
	if err != nil {
		t.Fatal(err)
	}
	annPath := writeFile(t, "annotations.json", string(anns))

	var stored struct {
		Stored int `json:"stored"`
	}
	if err := json.Unmarshal(execute(t, "annotate", saved.Run.ID, annPath, "--db", db, "-f", "json"), &stored); err != nil {
		t.Fatalf("decode annotate: %v", err)
	}
	if stored.Stored != 1 {
		t.Errorf("stored = %d", stored.Stored)
	}

	var cmp struct {
		StatusMatches int `json:"status_matches"`
		Aligned       []struct {
			TopicID string `json:"topic_id"`
		} `json:"aligned_topics"`
	}
	if err := json.Unmarshal(execute(t, "compare", saved.Run.ID, "--db", db, "-f", "json"), &cmp); err != nil {
		t.Fatalf("decode compare: %v", err)
	}
	if len(cmp.Aligned) != 1 || cmp.Aligned[0].TopicID != tp.ID || cmp.StatusMatches != 1 {
		t.Errorf("compare = %+v", cmp)
	}
}

func TestSimilarity(t *testing.T) {
	var out struct {
		Strategy string      `json:"strategy"`
		Matrix   [][]float64 `json:"matrix"`
	}
	if err := json.Unmarshal(execute(t, "similarity", "budget allocation is unfair", "the budget allocation", "-f", "json"), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Strategy != "tfidf" || len(out.Matrix) != 2 || out.Matrix[0][0] != 1 || out.Matrix[0][1] <= 0 {
		t.Errorf("similarity = %+v", out)
	}
}

func TestViews_Text(t *testing.T) {
	src := writeFile(t, "meeting.json", meetingJSON)

	out := string(execute(t, "topics", src, "-f", "text"))
	if !strings.Contains(out, "Topics (") || !strings.Contains(out, "budget allocation is unfair") {
		t.Errorf("topics text output:\n%s", out)
	}

	out = string(execute(t, "graph", src, "-f", "text"))
	if !strings.Contains(out, "Transitions") || !strings.Contains(out, "A -> B") {
		t.Errorf("graph text output:\n%s", out)
	}
}

func TestCandidates(t *testing.T) {
	src := writeFile(t, "meeting.json", meetingJSON)

	var out struct {
		Candidates []struct {
			TopicID string            `json:"topic_id"`
			Context []json.RawMessage `json:"context"`
		} `json:"candidates"`
		Packets []struct {
			Text string `json:"text"`
		} `json:"packets"`
	}
	if err := json.Unmarshal(execute(t, "candidates", src, "--context", "1", "-f", "json"), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Candidates) == 0 || len(out.Packets) == 0 {
		t.Fatalf("candidates = %+v", out)
	}
	for _, c := range out.Candidates {
		if len(c.Context) == 0 || len(c.Context) > 3 {
			t.Errorf("candidate %s has %d context turns", c.TopicID, len(c.Context))
		}
	}
}

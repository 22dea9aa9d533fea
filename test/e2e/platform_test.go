// Package e2e runs against a fully deployed stack (searchd, ingestd,
// PostgreSQL, Kafka, Redis). Tests skip unless YTA_E2E_SEARCH_URL and
// YTA_E2E_INGEST_URL point at running services.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

type endpoints struct {
	search string
	ingest string
}

func env(t *testing.T) endpoints {
	t.Helper()
	search := os.Getenv("YTA_E2E_SEARCH_URL")
	ingest := os.Getenv("YTA_E2E_INGEST_URL")
	if search == "" || ingest == "" {
		t.Skip("set YTA_E2E_SEARCH_URL and YTA_E2E_INGEST_URL to run e2e tests")
	}
	return endpoints{search: search, ingest: ingest}
}

func putJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFullPipeline(t *testing.T) {
	ep := env(t)
	runID := fmt.Sprintf("%d", time.Now().UnixNano())
	channelID := "UCe2echannel" + runID[:12]
	videoID := "e2evid" + runID[:8]

	resp := putJSON(t, ep.ingest+"/admin/channels/"+channelID, map[string]any{
		"title": "E2E Channel",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("channel registration status = %d", resp.StatusCode)
	}

	marker := "e2emarker" + runID[:8]
	resp = putJSON(t, ep.ingest+"/admin/videos/"+videoID, map[string]any{
		"channel_id":   channelID,
		"title":        "E2E Video",
		"published_at": time.Now().UTC().Format(time.RFC3339),
		"segments": []map[string]any{
			{"start": 0.0, "duration": 5.0, "text": "the " + marker + " appears here"},
		},
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("video ingest status = %d", resp.StatusCode)
	}

	// The transcript flows through Kafka before it becomes searchable.
	deadline := time.Now().Add(30 * time.Second)
	for {
		sresp, err := http.Get(ep.search + "/api/search?q=" + marker)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		var body struct {
			Total int `json:"total"`
		}
		if err := json.NewDecoder(sresp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		sresp.Body.Close()
		if body.Total >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("ingested transcript never became searchable")
		}
		time.Sleep(time.Second)
	}

	req, _ := http.NewRequest(http.MethodDelete, ep.ingest+"/admin/videos/"+videoID, nil)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusAccepted {
		t.Errorf("video removal status = %d", dresp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ep := env(t)
	for _, url := range []string{
		ep.search + "/health/live",
		ep.search + "/health/ready",
		ep.ingest + "/health",
	} {
		resp, err := http.Get(url)
		if err != nil {
			t.Errorf("GET %s: %v", url, err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", url, resp.StatusCode)
		}
	}
}

package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/config"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/engine"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/observability"
	"github.com/example/info_propagation_sim/worldgen"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	preset, ok := worldgen.GetWorldByName("border_duchies")
	if !ok {
		t.Fatal("border_duchies preset missing")
	}
	w := preset.Build()
	broker := hooks.NewBroker()
	eng, err := engine.New(engine.Deps{
		Graph:    core.GraphSourceFunc(func() *core.ProvinceGraph { return w.Graph }),
		Policy:   blocking.NewPolicy(w.Diplomacy, w.Spheres),
		Interest: w.Interest,
		Sink:     broker,
	})
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}

	srv, err := NewServer(Deps{
		Engine:  eng,
		Broker:  broker,
		Graph:   core.GraphSourceFunc(func() *core.ProvinceGraph { return w.Graph }),
		Version: "test",
	}, config.OpsConfig{Addr: ":0"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body string) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	var decoded map[string]any
	if len(rr.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s body %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return rr.Code, decoded
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, http.MethodGet, "/health", "")
	if code != http.StatusOK || body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("health: %d %#v", code, body)
	}

	code, body = doJSON(t, srv, http.MethodGet, "/ready", "")
	if code != http.StatusOK || body["ready"] != true {
		t.Errorf("ready: %d %#v", code, body)
	}
}

func TestStatsLifecycle(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, http.MethodPost, "/api/propagate",
		`{"kind":"military_action","source":1,"originator":100,"severity":0.6}`)
	if code != http.StatusAccepted || body["status"] != "accepted" {
		t.Fatalf("propagate: %d %#v", code, body)
	}

	code, body = doJSON(t, srv, http.MethodGet, "/api/stats", "")
	if code != http.StatusOK || body["totalPacketsPropagated"] != float64(1) {
		t.Errorf("stats after propagate: %d %#v", code, body)
	}

	code, _ = doJSON(t, srv, http.MethodPost, "/api/stats/reset", "")
	if code != http.StatusOK {
		t.Fatalf("reset: %d", code)
	}
	_, body = doJSON(t, srv, http.MethodGet, "/api/stats", "")
	if body["totalPacketsPropagated"] != float64(0) {
		t.Errorf("stats after reset: %#v", body)
	}
}

func TestConfigUpdate(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, http.MethodGet, "/api/config", "")
	if code != http.StatusOK || body["speedMultiplier"] != float64(1) {
		t.Fatalf("config get: %d %#v", code, body)
	}

	code, body = doJSON(t, srv, http.MethodPut, "/api/config", `{"maxDistance":400}`)
	if code != http.StatusOK || body["maxDistance"] != float64(400) {
		t.Errorf("config put: %d %#v", code, body)
	}

	// A partially invalid update must not change anything.
	code, _ = doJSON(t, srv, http.MethodPut, "/api/config", `{"speedMultiplier":2,"degradationRate":9}`)
	if code != http.StatusBadRequest {
		t.Fatalf("invalid update accepted: %d", code)
	}
	_, body = doJSON(t, srv, http.MethodGet, "/api/config", "")
	if body["speedMultiplier"] != float64(1) || body["degradationRate"] != float64(0.1) {
		t.Errorf("rejected update leaked: %#v", body)
	}
}

func TestWorldTopology(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, http.MethodGet, "/api/world", "")
	if code != http.StatusOK {
		t.Fatalf("world: %d", code)
	}
	provinces := body["provinces"].([]any)
	roads := body["roads"].([]any)
	if len(provinces) != 6 || len(roads) != 5 {
		t.Errorf("expected 6 provinces and 5 roads, got %d/%d", len(provinces), len(roads))
	}
	for _, raw := range roads {
		road := raw.(map[string]any)
		if road["from"] == float64(3) && road["to"] == float64(4) && road["cost"] != float64(2) {
			t.Errorf("border crossing cost lost: %#v", road)
		}
	}
}

func TestPropagateTargetedAndValidation(t *testing.T) {
	srv := newTestServer(t)

	code, body := doJSON(t, srv, http.MethodPost, "/api/propagate",
		`{"kind":"military_action","source":1,"originator":100,"severity":0.6,"target":4}`)
	if code != http.StatusOK || body["delivered"] != true {
		t.Fatalf("targeted propagate: %d %#v", code, body)
	}
	delivery := body["delivery"].(map[string]any)
	if delivery["hopCount"] != float64(3) || delivery["receiverRealm"] != float64(2) {
		t.Errorf("unexpected delivery view: %#v", delivery)
	}

	code, body = doJSON(t, srv, http.MethodPost, "/api/propagate",
		`{"kind":"military_action","source":1,"severity":0.6,"target":99}`)
	if code != http.StatusOK || body["delivered"] != false {
		t.Errorf("unknown target should report undelivered: %d %#v", code, body)
	}

	cases := []string{
		`{"kind":"gossip","source":1,"severity":0.5}`,
		`{"kind":"rebellion","severity":0.5}`,
		`{"kind":"rebellion","source":1,"severity":1.5}`,
		`{"kind":"rebellion","source":1,"severity":0.5,"relevance":"mild"}`,
		`not json`,
	}
	for _, payload := range cases {
		if code, _ := doJSON(t, srv, http.MethodPost, "/api/propagate", payload); code != http.StatusBadRequest {
			t.Errorf("payload %q: expected 400, got %d", payload, code)
		}
	}
}

func TestConsumersCatalog(t *testing.T) {
	srv := newTestServer(t)
	srv.broker.RegisterBundle(observability.MetricsHooks())
	desc, bundle := observability.TraceHooks(zerolog.Nop())
	srv.broker.RegisterBundle(desc, bundle)

	code, body := doJSON(t, srv, http.MethodGet, "/api/consumers", "")
	if code != http.StatusOK {
		t.Fatalf("consumers: %d", code)
	}
	consumers := body["consumers"].([]any)
	if len(consumers) != 2 {
		t.Fatalf("expected 2 consumers, got %d", len(consumers))
	}
	first := consumers[0].(map[string]any)
	if first["name"] != "prometheus" {
		t.Errorf("catalog should sort by name: %#v", consumers)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Serve one request first so the HTTP counters exist.
	doJSON(t, srv, http.MethodGet, "/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "propsim_http_requests_total") {
		t.Error("expected propsim http counters in scrape")
	}
}

func TestStatsStreamHandshake(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("decode frame %q: %v", msg, err)
	}
	if _, ok := frame["stats"]; !ok {
		t.Errorf("frame missing stats: %#v", frame)
	}
}

func TestNewServerValidation(t *testing.T) {
	if _, err := NewServer(Deps{}, config.OpsConfig{}, zerolog.Nop()); err == nil {
		t.Error("missing collaborators should be rejected")
	}
}

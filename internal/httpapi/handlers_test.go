// README: Integration tests for the run/request/fast-forward handlers,
// ported from fweilun-Ark/internal/http/handlers/order_handler_test.go's
// buildTestRouter/doRequest style onto the simulation Server.
package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ridepool/internal/auth"
	"ridepool/internal/httpapi"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	return &auth.Token{UID: "tester"}, nil
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := httpapi.NewServer(httpapi.ServerDeps{Verifier: stubVerifier{}})
	return s.NewRouter().(*gin.Engine)
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer testtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRun_ThenListVehicles(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodPost, "/runs", map[string]any{
		"num_vehicles":    2,
		"seat_capacity":   4,
		"space_kind":      "euclidean",
		"dispatcher_kind": "bruteforce",
		"velocity":        1,
		"max_x":           10,
		"max_y":           10,
		"seed":            1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.RunID == "" {
		t.Fatal("expected non-empty run_id")
	}

	w = doRequest(r, http.MethodGet, "/runs/"+created.RunID+"/vehicles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var listed struct {
		Vehicles []struct {
			VehicleID string  `json:"vehicle_id"`
			X         float64 `json:"x"`
			Y         float64 `json:"y"`
		} `json:"vehicles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode vehicles response: %v", err)
	}
	if len(listed.Vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(listed.Vehicles))
	}
}

func TestCreateRun_RejectsZeroVehicles(t *testing.T) {
	r := buildTestRouter()
	w := doRequest(r, http.MethodPost, "/runs", map[string]any{"num_vehicles": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitAndCommitRequest_HappyPath(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodPost, "/runs", map[string]any{
		"num_vehicles":    1,
		"space_kind":      "euclidean",
		"dispatcher_kind": "bruteforce",
		"velocity":        1,
		"max_x":           100,
		"max_y":           100,
	})
	var created struct {
		RunID string `json:"run_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doRequest(r, http.MethodPost, "/runs/"+created.RunID+"/requests", map[string]any{
		"request_id":      "req-1",
		"origin":          map[string]any{"x": 0, "y": 0},
		"destination":     map[string]any{"x": 5, "y": 0},
		"pickup_window":   map[string]any{"min": 0, "max": 1000},
		"delivery_window": map[string]any{"min": 0, "max": 1000},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var offer struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &offer)
	if offer.Type != "offer" {
		t.Fatalf("expected an offer for a solo vehicle, got %+v: %s", offer, w.Body.String())
	}

	w = doRequest(r, http.MethodPost, "/runs/"+created.RunID+"/requests/req-1/commit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var commit struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &commit)
	if commit.Type != "acceptance" {
		t.Fatalf("expected acceptance, got %+v: %s", commit, w.Body.String())
	}
}

func TestCommitRequest_StaleOfferRejected(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodPost, "/runs", map[string]any{
		"num_vehicles":    1,
		"space_kind":      "euclidean",
		"dispatcher_kind": "bruteforce",
		"velocity":        1,
		"max_x":           100,
		"max_y":           100,
	})
	var created struct {
		RunID string `json:"run_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doRequest(r, http.MethodPost, "/runs/"+created.RunID+"/requests/never-offered/commit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var rejection struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &rejection)
	if rejection.Type != "rejection" {
		t.Fatalf("expected rejection for a never-offered request, got %+v", rejection)
	}
}

func TestFastForward_AdvancesTime(t *testing.T) {
	r := buildTestRouter()

	w := doRequest(r, http.MethodPost, "/runs", map[string]any{
		"num_vehicles":    1,
		"space_kind":      "euclidean",
		"dispatcher_kind": "bruteforce",
		"velocity":        1,
		"max_x":           100,
		"max_y":           100,
	})
	var created struct {
		RunID string `json:"run_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doRequest(r, http.MethodPost, "/runs/"+created.RunID+"/fast-forward", map[string]any{"t": 10})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		CurrentTime float64 `json:"current_time"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CurrentTime != 10 {
		t.Fatalf("expected current_time 10, got %v", resp.CurrentTime)
	}
}

func TestRoutes_MissingAuthRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := httpapi.NewServer(httpapi.ServerDeps{Verifier: stubVerifier{}})
	r := s.NewRouter().(*gin.Engine)

	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an Authorization header, got %d", w.Code)
	}
}

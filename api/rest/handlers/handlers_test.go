package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-dispatcher/api/rest/routes"
	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/intake"
	"booking-dispatcher/core/models"
	"booking-dispatcher/core/repository"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	candidates []models.Candidate
}

func (f *fakeDirectory) Lookup(ctx context.Context, location string) ([]models.Candidate, error) {
	return f.candidates, nil
}

type silentNotifier struct{}

func (silentNotifier) Send(ctx context.Context, address, text string) (string, error) {
	return "msg-1", nil
}

func newTestRouter(candidates []models.Candidate) (*mux.Router, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	engine := dispatch.NewEngine(store, &fakeDirectory{candidates: candidates}, silentNotifier{})
	parser := intake.NewParser(intake.DefaultFieldMap())

	r := mux.NewRouter()
	routes.SetupRoutes(r, engine, store, parser)
	return r, store
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var austinCandidates = []models.Candidate{
	{Name: "Alice", Address: "15550001", LocationTag: "Austin", Status: "active"},
	{Name: "Bob", Address: "15550002", LocationTag: "Austin", Status: "active"},
}

func intakeBody(city string) map[string]interface{} {
	return map[string]interface{}{
		"entry_id": 7,
		"response": map[string]interface{}{
			"name":  "Dana",
			"phone": "15559999",
			"city":  city,
		},
	}
}

func TestIntakeWebhookCreatesJob(t *testing.T) {
	router, store := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/webhook", intakeBody("Austin"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	job, err := store.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAwaiting, job.Status)
	assert.Equal(t, "Dana", job.Booking.ClientName)
}

func TestIntakeWebhookMissingCity(t *testing.T) {
	router, store := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/webhook", intakeBody(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	jobs, err := store.List(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestIntakeWebhookNoProviders(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/webhook", intakeBody("Austin"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntakeWebhookBadBody(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func smsBody(from, text string) map[string]interface{} {
	return map[string]interface{}{
		"message": map[string]interface{}{
			"from": from,
			"text": text,
		},
	}
}

func TestInboundSMSAccept(t *testing.T) {
	router, store := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/webhook", intakeBody("Austin"))
	require.Equal(t, http.StatusOK, w.Code)
	jobID := decodeBody(t, w)["job_id"].(string)

	w = postJSON(t, router, "/incoming-sms", smsBody("15550001", "ACCEPT"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(dispatch.OutcomeAccepted), decodeBody(t, w)["outcome"])

	job, err := store.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAccepted, job.Status)
}

func TestInboundSMSNoActiveJob(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/incoming-sms", smsBody("19990000", "ACCEPT"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(dispatch.OutcomeNoActiveJob), decodeBody(t, w)["outcome"])
}

func TestInboundSMSMissingFields(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/incoming-sms", smsBody("", "ACCEPT"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, router, "/incoming-sms", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/webhook", intakeBody("Austin"))
	jobID := decodeBody(t, w)["job_id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+jobID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	body := decodeBody(t, w2)
	assert.Equal(t, jobID, body["id"])
	assert.Equal(t, string(models.JobStatusAwaiting), body["status"])
	current, ok := body["current_candidate"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice", current["name"])
}

func TestGetJobNotFound(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobsAndStats(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	postJSON(t, router, "/webhook", intakeBody("Austin"))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	items, ok := decodeBody(t, w)["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)

	req = httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
}

func TestGetJobEvents(t *testing.T) {
	router, _ := newTestRouter(austinCandidates)

	w := postJSON(t, router, "/webhook", intakeBody("Austin"))
	jobID := decodeBody(t, w)["job_id"].(string)
	postJSON(t, router, "/incoming-sms", smsBody("15550001", "DECLINE"))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+jobID+"/events", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	items, ok := decodeBody(t, w2)["items"].([]interface{})
	require.True(t, ok)
	// created -> awaiting; the decline keeps status awaiting (next candidate)
	// so only the two transitions are logged.
	assert.Len(t, items, 2)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastabarriere/api/pkg/reports"
)

type stubRepo struct {
	byID    map[string]*reports.Report
	listed  []reports.Report
	filters []reports.Filter
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]*reports.Report{}}
}

func (s *stubRepo) List(_ context.Context, f reports.Filter) ([]reports.Report, error) {
	s.filters = append(s.filters, f)
	return s.listed, nil
}

func (s *stubRepo) Create(_ context.Context, r *reports.Report) error {
	r.ID = fmt.Sprintf("report-%d", len(s.byID)+1)
	r.Status = reports.StatusOpen
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	s.byID[r.ID] = r
	return nil
}

func (s *stubRepo) Get(_ context.Context, id string) (*reports.Report, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	return r, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id, status string) (*reports.Report, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	r.Status = status
	return r, nil
}

func (s *stubRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return reports.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubRepo) AddVote(_ context.Context, id, kind string) (*reports.Report, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	if kind == reports.VoteRelevant {
		r.RelevantVotes++
	} else {
		r.NotRelevantVotes++
	}
	return r, nil
}

func newReportsServer(repo reports.Repository) *server {
	s := newTestServer(&stubResolver{}, &stubReverse{})
	s.reports = repo
	return s
}

func validReportPayload() map[string]any {
	return map[string]any{
		"type":        "pothole",
		"title":       "Buca profonda",
		"description": "Buca pericolosa per le bici",
		"address":     "Via Roma 5, Civitavecchia",
		"severity":    "high",
		"lat":         42.0934,
		"lng":         11.7954,
	}
}

func postJSON(router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReport(t *testing.T) {
	repo := newStubRepo()
	router := newReportsServer(repo).router(false)

	w := postJSON(router, "/api/reports", validReportPayload())

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Report reports.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.NotEmpty(t, body.Report.ID)
	assert.Equal(t, reports.StatusOpen, body.Report.Status)
	assert.Equal(t, "pothole", body.Report.Type)
	assert.Len(t, repo.byID, 1)
}

func TestCreateReportValidation(t *testing.T) {
	router := newReportsServer(newStubRepo()).router(false)

	for _, missing := range []string{"type", "title", "description", "address", "severity", "lat"} {
		payload := validReportPayload()
		delete(payload, missing)

		w := postJSON(router, "/api/reports", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, "missing field: %s", missing)
	}
}

func TestListReportsPassesFilters(t *testing.T) {
	repo := newStubRepo()
	router := newReportsServer(repo).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports?type=pothole&status=open", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.filters, 1)
	assert.Equal(t, reports.Filter{Type: "pothole", Status: "open"}, repo.filters[0])

	// Empty list serializes as [], not null.
	assert.Contains(t, w.Body.String(), `"reports":[]`)
}

func TestGetReportNotFound(t *testing.T) {
	router := newReportsServer(newStubRepo()).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteReport(t *testing.T) {
	repo := newStubRepo()
	repo.byID["r1"] = &reports.Report{ID: "r1", Status: reports.StatusOpen}

	router := newReportsServer(repo).router(false)

	w := postJSON(router, "/api/reports/r1/vote", map[string]string{"kind": "relevant"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"relevantVotes":1`)

	w = postJSON(router, "/api/reports/r1/vote", map[string]string{"kind": "not_relevant"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notRelevantVotes":1`)

	w = postJSON(router, "/api/reports/r1/vote", map[string]string{"kind": "meh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReportStatusRequiresAuth(t *testing.T) {
	repo := newStubRepo()
	repo.byID["r1"] = &reports.Report{ID: "r1", Status: reports.StatusOpen}

	srv := newReportsServer(repo)
	router := srv.router(false)

	payload, _ := json.Marshal(map[string]string{"status": "resolved"})

	req := httptest.NewRequest(http.MethodPatch, "/api/reports/r1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := srv.admin.Login("test-password")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPatch, "/api/reports/r1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reports.StatusResolved, repo.byID["r1"].Status)
}

func TestUpdateReportStatusRejectsUnknownStatus(t *testing.T) {
	repo := newStubRepo()
	repo.byID["r1"] = &reports.Report{ID: "r1", Status: reports.StatusOpen}

	srv := newReportsServer(repo)
	router := srv.router(false)

	token, err := srv.admin.Login("test-password")
	require.NoError(t, err)

	payload, _ := json.Marshal(map[string]string{"status": "closed"})
	req := httptest.NewRequest(http.MethodPatch, "/api/reports/r1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReport(t *testing.T) {
	repo := newStubRepo()
	repo.byID["r1"] = &reports.Report{ID: "r1"}

	srv := newReportsServer(repo)
	router := srv.router(false)

	token, err := srv.admin.Login("test-password")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/reports/r1", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.byID)
}

func TestAdminLogin(t *testing.T) {
	router := newReportsServer(newStubRepo()).router(false)

	w := postJSON(router, "/api/admin/login", map[string]string{"password": "test-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = postJSON(router, "/api/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/admin/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminVerify(t *testing.T) {
	srv := newReportsServer(newStubRepo())
	router := srv.router(false)

	token, err := srv.admin.Login("test-password")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/verify", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadPhoto(t *testing.T) {
	router := newReportsServer(newStubRepo()).router(false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="photo.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)

	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data:image/jpeg;base64,")
	assert.Contains(t, w.Body.String(), `"fileId"`)
}

func TestUploadRejectsNonImage(t *testing.T) {
	router := newReportsServer(newStubRepo()).router(false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)

	_, err = part.Write([]byte("just text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, strings.ToLower(w.Body.String()), "image")
}

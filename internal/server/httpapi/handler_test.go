package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shiftbook/internal/common"
	"github.com/dmitrijs2005/shiftbook/internal/logging"
	"github.com/dmitrijs2005/shiftbook/internal/server/auth"
	"github.com/dmitrijs2005/shiftbook/internal/server/models"
	"github.com/dmitrijs2005/shiftbook/internal/server/services"
)

var testSecret = []byte("test-secret")

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUsers struct {
	registerErr error
	loginPair   *services.TokenPair
	loginErr    error
	refreshPair *services.TokenPair
	refreshErr  error
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u1", UserName: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginPair, nil
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshPair, nil
}

type fakeShifts struct {
	byDate map[string]*models.Shift

	putErr     error
	lastUserID string
	lastForce  bool
}

func newFakeShifts() *fakeShifts {
	return &fakeShifts{byDate: map[string]*models.Shift{}}
}

func (f *fakeShifts) GetByDate(ctx context.Context, userID, date string) (*models.Shift, error) {
	s, ok := f.byDate[date]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeShifts) Put(ctx context.Context, userID string, shift *models.Shift, forceClear bool) (*models.Shift, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.lastUserID = userID
	f.lastForce = forceClear
	stored := *shift
	if stored.ID == "" {
		stored.ID = "srv-1"
	}
	stored.UserID = userID
	f.byDate[shift.Date] = &stored
	return &stored, nil
}

func (f *fakeShifts) DeleteByDate(ctx context.Context, userID, date string) error {
	delete(f.byDate, date)
	return nil
}

type fakeExports struct {
	err error
}

func (f *fakeExports) GetUploadURL(ctx context.Context, userID string, filename string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "exports/" + userID + "/" + filename, "http://minio/put", nil
}

func newTestServer(t *testing.T, users UserProvider, shifts ShiftProvider, exports ExportProvider) *httptest.Server {
	t.Helper()
	h := NewHandler(users, shifts, exports, testLogger())
	srv := NewServer(":0", h, testSecret, testLogger())
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func accessToken(t *testing.T, validity time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken("u1", testSecret, validity)
	require.NoError(t, err)
	return token
}

func authedRequest(t *testing.T, method, url, token string, body []byte) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return req
}

func TestLoginEndpoint(t *testing.T) {
	users := &fakeUsers{loginPair: &services.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	ts := newTestServer(t, users, newFakeShifts(), &fakeExports{})

	resp, err := http.Post(ts.URL+"/api/login", "application/json",
		bytes.NewReader([]byte(`{"username":"driver1","password":"secret"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	assert.Equal(t, "a", pair.AccessToken)
	assert.Equal(t, "r", pair.RefreshToken)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	users := &fakeUsers{loginErr: common.ErrorUnauthorized}
	ts := newTestServer(t, users, newFakeShifts(), &fakeExports{})

	resp, err := http.Post(ts.URL+"/api/login", "application/json",
		bytes.NewReader([]byte(`{"username":"driver1","password":"bad"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterEndpoint_RequiresCredentials(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, newFakeShifts(), &fakeExports{})

	resp, err := http.Post(ts.URL+"/api/register", "application/json",
		bytes.NewReader([]byte(`{"username":""}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshEndpoint_Expired(t *testing.T) {
	users := &fakeUsers{refreshErr: common.ErrRefreshTokenExpired}
	ts := newTestServer(t, users, newFakeShifts(), &fakeExports{})

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json",
		bytes.NewReader([]byte(`{"refresh_token":"old"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestShiftEndpoints_RoundTrip(t *testing.T) {
	shifts := newFakeShifts()
	ts := newTestServer(t, &fakeUsers{}, shifts, &fakeExports{})
	token := accessToken(t, time.Hour)

	body := []byte(`{
		"shift": {"date": "2026-03-01", "updated_at": 42, "normal_duty": true,
			"duty_start": "06:10", "duty_end": "14:40"},
		"segments": [{"from_code": "RIX", "to_code": "SIG", "train_number": "6402"}],
		"guest_rides": [],
		"waiting_times": []
	}`)

	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodPut, ts.URL+"/api/shifts", token, body))
	require.NoError(t, err)
	var res struct {
		ID        string `json:"id"`
		UpdatedAt int64  `json:"updated_at"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "srv-1", res.ID)
	assert.Equal(t, int64(42), res.UpdatedAt)
	assert.Equal(t, "u1", shifts.lastUserID)

	resp, err = http.DefaultClient.Do(authedRequest(t, http.MethodGet, ts.URL+"/api/shifts?date=2026-03-01", token, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p dayPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "2026-03-01", p.Shift.Date)
	assert.Equal(t, int64(42), p.Shift.UpdatedAt)
	require.Len(t, p.Segments, 1)
	assert.Equal(t, "RIX", p.Segments[0].FromCode)
}

func TestGetShift_NotFound(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, newFakeShifts(), &fakeExports{})
	token := accessToken(t, time.Hour)

	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodGet, ts.URL+"/api/shifts?date=2026-03-09", token, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutShift_EmptySegmentsRejected(t *testing.T) {
	shifts := newFakeShifts()
	shifts.putErr = common.ErrEmptySegmentsRejected
	ts := newTestServer(t, &fakeUsers{}, shifts, &fakeExports{})
	token := accessToken(t, time.Hour)

	body := []byte(`{"shift": {"date": "2026-03-01", "normal_duty": true}, "segments": []}`)
	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodPut, ts.URL+"/api/shifts", token, body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteShift_Idempotent(t *testing.T) {
	shifts := newFakeShifts()
	shifts.byDate["2026-03-01"] = &models.Shift{ID: "s1", Date: "2026-03-01"}
	ts := newTestServer(t, &fakeUsers{}, shifts, &fakeExports{})
	token := accessToken(t, time.Hour)

	for i := 0; i < 2; i++ {
		resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodDelete, ts.URL+"/api/shifts?date=2026-03-01", token, nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestExportUploadURLEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, newFakeShifts(), &fakeExports{})
	token := accessToken(t, time.Hour)

	resp, err := http.DefaultClient.Do(authedRequest(t, http.MethodGet, ts.URL+"/api/export/upload-url", token, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "http://minio/put", out.URL)
	assert.Contains(t, out.Key, "exports/u1/")
}

func TestPingEndpoint_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, newFakeShifts(), &fakeExports{})

	resp, err := http.Get(ts.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	service := domain.NewService(memory.NewRepository())
	handler := NewHandler(service, zerolog.Nop(), time.FixedZone("logfilter", -6*3600))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func postForm(t *testing.T, mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func registerUser(t *testing.T, mux *http.ServeMux, username string) UserView {
	t.Helper()
	rr := postForm(t, mux, "/api/users", url.Values{"username": {username}})
	require.Equal(t, http.StatusOK, rr.Code)

	var view UserView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, username, view.Username)
	require.NotEmpty(t, view.ID)
	return view
}

func addExercise(t *testing.T, mux *http.ServeMux, userID string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return postForm(t, mux, "/api/users/"+userID+"/exercises", form)
}

func TestRegisterUserIsIdempotentByUsername(t *testing.T) {
	mux := newTestMux(t)

	first := registerUser(t, mux, "alice")
	second := registerUser(t, mux, "alice")

	require.Equal(t, first.ID, second.ID)
}

func TestRegisterDistinctUsersGetDistinctIDs(t *testing.T) {
	mux := newTestMux(t)

	alice := registerUser(t, mux, "alice")
	bob := registerUser(t, mux, "bob")

	require.NotEqual(t, alice.ID, bob.ID)
}

func TestRegisterUserRequiresUsername(t *testing.T) {
	mux := newTestMux(t)

	rr := postForm(t, mux, "/api/users", url.Values{})

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"error":"Operation failed"}`, rr.Body.String())
}

func TestListUsersReturnsRegisteredUsers(t *testing.T) {
	mux := newTestMux(t)

	alice := registerUser(t, mux, "alice")
	bob := registerUser(t, mux, "bob")

	rr := get(t, mux, "/api/users")
	require.Equal(t, http.StatusOK, rr.Code)

	var users []UserView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 2)
	require.ElementsMatch(t, []UserView{alice, bob}, users)
}

func TestAddExerciseRendersCalendarDate(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	rr := addExercise(t, mux, alice.ID, url.Values{
		"description": {"run"},
		"duration":    {"30"},
		"date":        {"2023-01-01"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var view ExerciseView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, alice.ID, view.ID)
	require.Equal(t, "alice", view.Username)
	require.Equal(t, "Sun Jan 01 2023", view.Date)
	require.Equal(t, 30, view.Duration)
	require.Equal(t, "run", view.Description)
}

func TestAddExerciseDefaultsDateToToday(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	rr := addExercise(t, mux, alice.ID, url.Values{
		"description": {"swim"},
		"duration":    {"20"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var view ExerciseView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, time.Now().UTC().Format(calendarDate), view.Date)
}

func TestAddExerciseForUnknownUser(t *testing.T) {
	mux := newTestMux(t)

	rr := addExercise(t, mux, "does-not-exist", url.Values{
		"description": {"run"},
		"duration":    {"30"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"error":"user doesn't exist"}`, rr.Body.String())
}

func TestAddExerciseAcceptsLegacyBodyID(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	rr := addExercise(t, mux, "wrong-path-id", url.Values{
		":_id":        {alice.ID},
		"description": {"row"},
		"duration":    {"15"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var view ExerciseView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, alice.ID, view.ID)
}

func TestAddExerciseRejectsBadInput(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	cases := map[string]url.Values{
		"missing description": {"duration": {"30"}},
		"bad duration":        {"description": {"run"}, "duration": {"soon"}},
		"bad date":            {"description": {"run"}, "duration": {"30"}, "date": {"not-a-date"}},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rr := addExercise(t, mux, alice.ID, form)
			require.Equal(t, http.StatusOK, rr.Code)
			require.JSONEq(t, `{"error":"Operation failed"}`, rr.Body.String())
		})
	}
}

func TestGetLogEndToEnd(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	rr := addExercise(t, mux, alice.ID, url.Values{
		"description": {"run"},
		"duration":    {"30"},
		"date":        {"2023-01-01"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, mux, "/api/users/"+alice.ID+"/logs")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, alice.ID, resp.ID)
	require.Equal(t, "alice", resp.Username)
	require.Empty(t, resp.From)
	require.Empty(t, resp.To)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, []LogEntry{{Description: "run", Duration: 30, Date: "Sun Jan 01 2023"}}, resp.Log)
}

func TestGetLogHonorsLimit(t *testing.T) {
	mux := newTestMux(t)
	bob := registerUser(t, mux, "bob")

	days := []string{"2023-03-01", "2023-03-02", "2023-03-03", "2023-03-04", "2023-03-05"}
	for _, day := range days {
		rr := addExercise(t, mux, bob.ID, url.Values{
			"description": {"lift"},
			"duration":    {"45"},
			"date":        {day},
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := get(t, mux, "/api/users/"+bob.ID+"/logs?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Log, 2)
}

func TestGetLogIgnoresInvalidLimit(t *testing.T) {
	mux := newTestMux(t)
	bob := registerUser(t, mux, "bob")

	for _, day := range []string{"2023-03-01", "2023-03-02", "2023-03-03"} {
		rr := addExercise(t, mux, bob.ID, url.Values{
			"description": {"lift"},
			"duration":    {"45"},
			"date":        {day},
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	for _, limit := range []string{"soon", "-1", "0"} {
		rr := get(t, mux, "/api/users/"+bob.ID+"/logs?limit="+limit)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp LogResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Equal(t, 3, resp.Count, "invalid limit %q must not truncate", limit)
	}
}

func TestGetLogFiltersInclusiveDateRange(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	for _, day := range []string{"2023-06-01", "2023-06-15", "2023-06-25"} {
		rr := addExercise(t, mux, alice.ID, url.Values{
			"description": {"ride"},
			"duration":    {"60"},
			"date":        {day},
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := get(t, mux, "/api/users/"+alice.ID+"/logs?from=2023-06-10&to=2023-06-20")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "Sat Jun 10 2023", resp.From)
	require.Equal(t, "Tue Jun 20 2023", resp.To)
	require.Equal(t, 1, resp.Count)
	require.Len(t, resp.Log, 1)
	require.Equal(t, "Thu Jun 15 2023", resp.Log[0].Date)
}

func TestGetLogForUnknownUser(t *testing.T) {
	mux := newTestMux(t)

	rr := get(t, mux, "/api/users/does-not-exist/logs")

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"error":"user doesn't exist"}`, rr.Body.String())
}

func TestGetLogRejectsMalformedFilterDate(t *testing.T) {
	mux := newTestMux(t)
	alice := registerUser(t, mux, "alice")

	rr := get(t, mux, "/api/users/"+alice.ID+"/logs?from=June")

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"error":"Operation failed"}`, rr.Body.String())
}

func TestUnsupportedMethodOnUsers(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/users", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/scribedesk/scribe/internal/state"
	"github.com/scribedesk/scribe/internal/storage"
	"github.com/scribedesk/scribe/pkg/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// newTestClient returns a client against srv with a logged-in token store.
func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *state.Auth, *state.Alerts) {
	t.Helper()
	auth := state.NewAuth(storage.NewMemory(), nil)
	if err := auth.SetToken("test-token"); err != nil {
		t.Fatal(err)
	}
	alerts := state.NewAlerts()
	return New(srv.URL, auth, alerts), auth, alerts
}

func TestListJobs(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/transcriptions/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "missing request id"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"msg": "Jobs retrieved",
			"jobs": []map[string]any{
				{"jobId": 1, "fileName": "talk.mp3", "status": map[string]any{"step": "success"}},
				{"jobId": 2, "fileName": "call.wav", "status": map[string]any{"step": "runnerInProgress", "progress": 0.25}},
			},
			"queuePosition": 3,
		})
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	defer srv.Close()

	c, auth, alerts := newTestClient(t, srv)
	resp := c.ListJobs(context.Background())
	if !resp.OK || resp.Status != 200 {
		t.Fatalf("ListJobs() = ok %v status %d msg %q", resp.OK, resp.Status, resp.Msg)
	}
	if resp.Msg != "Jobs retrieved" {
		t.Errorf("Msg = %q", resp.Msg)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(resp.Jobs))
	}
	if resp.Jobs[1].Step() != domain.StepRunnerInProgress {
		t.Errorf("jobs[1].Step() = %q", resp.Jobs[1].Step())
	}
	if string(resp.Fields["queuePosition"]) != "3" {
		t.Errorf("unknown field not passed through: %v", resp.Fields)
	}
	if !auth.LoggedIn() || alerts.Len() != 0 {
		t.Error("successful call changed session state")
	}
}

func TestGetQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcriptions/transcript" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"msg": "ok", "transcript": "job " + r.URL.Query().Get("jobId")})
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	resp := c.Transcript(context.Background(), 17)
	if !resp.OK {
		t.Fatalf("Transcript() not ok: %q", resp.Msg)
	}
	if resp.Transcript != "job 17" {
		t.Errorf("Transcript = %q, want %q", resp.Transcript, "job 17")
	}
}

func TestNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"msg": "looks like json"}`) //nolint:errcheck
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	for name, resp := range map[string]*Response{
		"get":  c.Get(context.Background(), "x", nil, nil),
		"post": c.Post(context.Background(), "x", Form{}, nil),
	} {
		if resp.OK {
			t.Errorf("%s: OK = true", name)
		}
		if resp.Status != 502 {
			t.Errorf("%s: Status = %d", name, resp.Status)
		}
		if resp.Msg != "Response not in JSON format. HTTP status code 502" {
			t.Errorf("%s: Msg = %q", name, resp.Msg)
		}
	}
}

func TestMissingMsgField(t *testing.T) {
	for _, body := range []string{`{}`, `{"msg": null, "jobs": []}`, `[]`, `"just a string"`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				io.WriteString(w, body) //nolint:errcheck
			}))
			defer srv.Close()

			c, _, _ := newTestClient(t, srv)
			resp := c.Get(context.Background(), "x", nil, nil)
			if resp.OK {
				t.Error("OK = true")
			}
			if resp.Status != 200 {
				t.Errorf("Status = %d, want the real HTTP status", resp.Status)
			}
			if resp.Msg != "msg field missing from response json object. HTTP status code 200" {
				t.Errorf("Msg = %q", resp.Msg)
			}
		})
	}
}

func TestApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Unknown email", "errorType": "email"})
	}))
	defer srv.Close()

	c, auth, alerts := newTestClient(t, srv)
	resp := c.Login(context.Background(), "a@b.c", "pw")
	if resp.OK || resp.Status != 400 || resp.Msg != "Unknown email" {
		t.Errorf("Login() = %+v", resp)
	}
	if resp.ErrorType != domain.ErrorEmail {
		t.Errorf("ErrorType = %q", resp.ErrorType)
	}
	err := resp.Err()
	if !IsStatus(err, 400) {
		t.Errorf("IsStatus(err, 400) = false for %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("error = %q, want error type", err.Error())
	}
	if !auth.LoggedIn() || alerts.Len() != 0 {
		t.Error("400 should not end the session")
	}
}

func TestNonStringMsg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"msg": 5, "transcript": 7, "email": "a@b.c"})
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	resp := c.Get(context.Background(), "x", nil, nil)
	if !resp.OK || resp.Msg != "5" {
		t.Errorf("resp = ok %v msg %q", resp.OK, resp.Msg)
	}
	if resp.Transcript != "" {
		t.Errorf("Transcript = %q, want empty for mistyped field", resp.Transcript)
	}
	if resp.Email != "a@b.c" {
		t.Errorf("Email = %q, other fields should still decode", resp.Email)
	}
	if string(resp.Fields["transcript"]) != "7" {
		t.Errorf("Fields[transcript] = %s", resp.Fields["transcript"])
	}
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
	}))
	defer srv.Close()

	calls := map[string]func(c *Client) *Response{
		"get":          func(c *Client) *Response { return c.Get(context.Background(), "x", nil, nil) },
		"post":         func(c *Client) *Response { return c.Post(context.Background(), "x", Form{}, nil) },
		"getLoggedIn":  func(c *Client) *Response { return c.GetLoggedIn(context.Background(), "x", nil) },
		"postLoggedIn": func(c *Client) *Response { return c.PostLoggedIn(context.Background(), "x", Form{}) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			c, auth, alerts := newTestClient(t, srv)
			resp := call(c)
			if resp.OK || resp.Status != 401 {
				t.Errorf("resp = ok %v status %d", resp.OK, resp.Status)
			}
			if auth.LoggedIn() {
				t.Error("still logged in after 401")
			}
			all := alerts.All()
			if len(all) != 1 {
				t.Fatalf("got %d alerts, want 1", len(all))
			}
			if all[0].Severity != domain.SeverityRed {
				t.Errorf("severity = %q, want red", all[0].Severity)
			}
			if all[0].Message != "You have been logged out: Token has expired" {
				t.Errorf("message = %q", all[0].Message)
			}
		})
	}
}

func TestSignatureFailureForcesLogout(t *testing.T) {
	msg := "Signature verification failed"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": msg})
	}))
	defer srv.Close()

	c, auth, alerts := newTestClient(t, srv)
	resp := c.UserInfo(context.Background())
	if resp.Status != 422 || resp.Msg != msg {
		t.Errorf("resp = %d %q", resp.Status, resp.Msg)
	}
	if auth.LoggedIn() {
		t.Error("still logged in after invalidated signature")
	}
	all := alerts.All()
	if len(all) != 1 || all[0].Message != "You have been logged out: Token was invalidated" {
		t.Errorf("alerts = %+v", all)
	}
}

func TestOtherUnprocessableKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "Not enough segments"})
	}))
	defer srv.Close()

	c, auth, alerts := newTestClient(t, srv)
	c.UserInfo(context.Background())
	if !auth.LoggedIn() || alerts.Len() != 0 {
		t.Error("unrelated 422 ended the session")
	}
}

func TestPostTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"msg": "Request Entity Too Large"})
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	resp := c.SubmitJob(context.Background(), SubmitRequest{FileName: "big.wav", Content: strings.NewReader("xx")})
	if resp.OK || resp.Status != 413 {
		t.Errorf("resp = ok %v status %d", resp.OK, resp.Status)
	}
	if resp.Msg != "Submitted file is too large. Please only submit files that are smaller than 1GB." {
		t.Errorf("Msg = %q", resp.Msg)
	}

	// GET has no special case for 413.
	get := c.Get(context.Background(), "x", nil, nil)
	if get.Msg != "Request Entity Too Large" {
		t.Errorf("GET 413 Msg = %q", get.Msg)
	}
}

func TestSubmitJobMultipart(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/transcriptions/submit", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
			return
		}
		if r.FormValue("model") != "large-v3" || r.FormValue("language") != "de" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "bad fields"})
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f) //nolint:errcheck
		if hdr.Filename != "memo.m4a" || string(data) != "audio-bytes" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "bad file"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"msg": "Job submitted", "jobId": 99})
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	resp := c.SubmitJob(context.Background(), SubmitRequest{
		FileName: "memo.m4a",
		Content:  strings.NewReader("audio-bytes"),
		Model:    "large-v3",
		Language: "de",
	})
	if !resp.OK {
		t.Fatalf("SubmitJob() = %d %q", resp.Status, resp.Msg)
	}
	if resp.JobID == nil || *resp.JobID != 99 {
		t.Errorf("JobID = %v, want 99", resp.JobID)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	auth := state.NewAuth(storage.NewMemory(), nil)
	auth.SetToken("tok") //nolint:errcheck
	alerts := state.NewAlerts()
	c := New(url, auth, alerts)

	resp := c.GetLoggedIn(context.Background(), "x", nil)
	if resp.OK || resp.Status != 404 || !resp.Incomplete {
		t.Errorf("resp = %+v, want incomplete 404", resp)
	}
	if resp.Msg == "" {
		t.Error("Msg empty, want transport error text")
	}
	err := resp.Err()
	if !IsIncomplete(err) {
		t.Error("IsIncomplete() = false")
	}
	if IsStatus(err, 404) {
		t.Error("sentinel 404 reported as a backend 404")
	}
	if !auth.LoggedIn() || alerts.Len() != 0 {
		t.Error("transport failure ended the session")
	}
}

func TestMalformedJSONIsIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"msg": "trunc`) //nolint:errcheck
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	resp := c.Get(context.Background(), "x", nil, nil)
	if resp.OK || resp.Status != 404 || !resp.Incomplete {
		t.Errorf("resp = %+v", resp)
	}
}

func TestLoggedInCallsShortCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"msg": "ok"})
	}))
	defer srv.Close()

	auth := state.NewAuth(storage.NewMemory(), nil)
	alerts := state.NewAlerts()
	c := New(srv.URL, auth, alerts)

	for name, resp := range map[string]*Response{
		"post": c.PostLoggedIn(context.Background(), "x", Form{Fields: map[string]string{"a": "b"}}),
		"get":  c.GetLoggedIn(context.Background(), "x", nil),
	} {
		if resp.OK || resp.Status != 401 || resp.Msg != "not logged in" {
			t.Errorf("%s: resp = %+v", name, resp)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hit %d times, want 0", n)
	}
	if alerts.Len() != 0 {
		t.Error("short-circuit pushed an alert")
	}
}

func TestNilCollaborators(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "expired"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil, nil)
	if resp := c.Get(context.Background(), "/x", nil, nil); resp.Status != 401 {
		t.Errorf("Status = %d", resp.Status)
	}
	if resp := c.GetLoggedIn(context.Background(), "x", nil); resp.Msg != "not logged in" {
		t.Errorf("Msg = %q", resp.Msg)
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		writeJSON(w, http.StatusOK, map[string]string{"msg": "late"})
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	resp := c.Get(ctx, "x", nil, nil)
	if resp.OK || !resp.Incomplete {
		t.Fatalf("resp = %+v, want incomplete", resp)
	}
}

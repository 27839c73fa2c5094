package conn_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/minisql/minisql/internal/auth"
	. "github.com/minisql/minisql/internal/conn"
	"github.com/minisql/minisql/internal/engine"
	"gotest.tools/assert"
)

func newTestServer(t *testing.T, user *auth.User) (*Server, *engine.Engine) {
	eng, err := engine.New(filepath.Join(t.TempDir(), "data"))
	assert.NilError(t, err)
	t.Cleanup(eng.Close)
	return NewServer(eng, user), eng
}

func postForm(handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPageGet(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	assert.Assert(t, strings.Contains(body, "minisql shell"))
	assert.Assert(t, strings.Contains(body, "default"))
	assert.Assert(t, strings.Contains(body, "No pending log entries."))
}

func TestPagePostQuery(t *testing.T) {
	server, eng := newTestServer(t, nil)
	handler := server.Handler()

	rec := postForm(handler, url.Values{"query": {"CREATE TABLE users (id INT)"}})
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(rec.Body.String(), "created."))

	rec = postForm(handler, url.Values{"query": {"INSERT INTO users VALUES (1)"}})
	assert.Assert(t, strings.Contains(rec.Body.String(), "1 row inserted."))
	// mutation shows up in the pending log panel
	assert.Assert(t, strings.Contains(rec.Body.String(), "INSERT"))
	assert.Equal(t, len(eng.PendingEntries()), 1)
}

func TestPagePostUseDatabase(t *testing.T) {
	server, eng := newTestServer(t, nil)
	rec := postForm(server.Handler(), url.Values{"use_database": {"reports"}})

	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(rec.Body.String(), "Database &#39;reports&#39; not found."))
	assert.Equal(t, eng.ActiveDatabase(), "default")
}

func TestBasicAuth(t *testing.T) {
	server, _ := newTestServer(t, auth.NewUser("admin", "secret"))
	handler := server.Handler()

	t.Run("rejected without credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, rec.Code, http.StatusUnauthorized)
	})

	t.Run("accepted with credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, rec.Code, http.StatusOK)
	})

	t.Run("rejected with wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, rec.Code, http.StatusUnauthorized)
	})
}

func TestWebsocketQuery(t *testing.T) {
	server, _ := newTestServer(t, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api", nil)
	assert.NilError(t, err)
	defer ws.Close()

	assert.NilError(t, ws.WriteJSON(map[string]any{
		"query":                  "CREATE TABLE t (a INT)",
		"__msql_client_req_id__": 7,
	}))

	var res Response
	assert.NilError(t, ws.ReadJSON(&res))
	assert.Equal(t, res.Status, http.StatusOK)
	assert.Equal(t, res.ReqId, 7)
	assert.DeepEqual(t, res.Lines, []string{"Table 't' created."})
}

func TestShellExitKeywords(t *testing.T) {
	_, eng := newTestServer(t, nil)
	in := strings.NewReader("CREATE TABLE t (a INT)\nexit\nSELECT * FROM t\n")
	var out strings.Builder

	RunShell(eng, in, &out)

	assert.Assert(t, strings.Contains(out.String(), "Table 't' created."))
	// nothing after the exit keyword runs
	assert.Assert(t, !strings.Contains(out.String(), "(no rows)"))
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/proteinservice"
	"github.com/starford/genedata/internal/report"
	"github.com/starford/genedata/internal/testutil"
)

// testEnv builds a router over the sample catalog.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	c := testutil.SampleCatalog(t)
	h := catalog.NewHolder(catalog.NewSnapshot(c, c, nil), 0)
	svc := proteinservice.NewService(h, "Lab")
	return NewRouter(svc, authEnabled, token, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCatalogEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/catalog")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp CatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Records != 5 {
		t.Errorf("records = %d, want 5", resp.Records)
	}
	if len(resp.Checksum) != 64 {
		t.Errorf("checksum = %q, want sha256 hex", resp.Checksum)
	}
}

func TestGetRecord(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/records/P1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rec RecordResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.Origin != "Org1" || rec.Formula != "2AB" || rec.Decoded != "AAB" {
		t.Errorf("record = %+v", rec)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/records/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing record = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?pattern=2B")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Name != "P3" || resp.Origin != "Org3" || resp.Decoded != "BB" {
		t.Errorf("search = %+v", resp)
	}

	w = get(t, router, "/search?pattern=Q")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Found {
		t.Errorf("search not found = %d %+v", w.Code, resp)
	}
}

func TestSearchMalformed(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?pattern=AB3")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed = %d, want 400", w.Code)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no pattern = %d, want 400", w.Code)
	}
}

func TestDiffEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/diff?a=P1&b=P2")
	var resp DiffResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Missing || resp.Difference != 1 {
		t.Errorf("diff = %d %+v", w.Code, resp)
	}

	w = get(t, router, "/diff?a=P1&b=ghost")
	resp = DiffResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Missing {
		t.Errorf("diff missing = %+v", resp)
	}

	w = get(t, router, "/diff?a=P1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("diff one name = %d, want 400", w.Code)
	}
}

func TestModeEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/mode?name=P3")
	var resp ModeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Symbol != "A" || resp.Count != 2 {
		t.Errorf("mode = %d %+v", w.Code, resp)
	}

	w = get(t, router, "/mode?name=ghost")
	resp = ModeResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Missing {
		t.Errorf("mode missing = %+v", resp)
	}
}

func TestReportEndpoint(t *testing.T) {
	router := testEnv(t, "")

	body := "search\t2B\ndiff\tP1\tP2\nmode\tP9\n"
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	sep := report.Separator
	want := "Lab\n" + sep + "\n" +
		"001 search BB\n" +
		"organism                protein\n" +
		"Org3    P3\n" + sep + "\n" +
		"002 diff P1 P2\n" +
		"amino-acids difference: 1\n" + sep + "\n" +
		"003 mode P9\n" +
		"amino-acid occurs:\n" +
		"MISSING: P9\n" + sep + "\n"
	if got := w.Body.String(); got != want {
		t.Errorf("report mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := get(t, router, "/catalog")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/catalog")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// sseStub writes headers and blocks until the request context is done.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", sseStub)

	w := get(t, router, "/events")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", sseStub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

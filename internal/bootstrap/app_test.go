package bootstrap

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tracker/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("ENV", "dev")
	return config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "none",
		ViewTTL:         time.Minute,
		RateLimitRPS:    100,
		RateLimitBurst:  100,
	}
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	resp := serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"storage":"ok"`) {
		t.Fatalf("unexpected health %d %s", resp.Code, resp.Body.String())
	}
	resp = serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(resp.Body.String(), "wipe_started_total") {
		t.Fatalf("metrics missing wipe counters: %s", resp.Body.String())
	}
}

func TestSignInUploadListAndWipe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	resp := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusFound || resp.Header().Get("Location") != "/auth?next=%2F" {
		t.Fatalf("expected redirect to auth, got %d %q", resp.Code, resp.Header().Get("Location"))
	}

	form := url.Values{"username": {"ada"}, "next": {"/"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/dev", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = serve(app, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("dev sign in: %d %s", resp.Code, resp.Body.String())
	}
	var session *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("expected session cookie")
	}
	withSession := func(r *http.Request) *http.Request {
		r.AddCookie(session)
		return r
	}

	resp = serve(app, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)))
	if !strings.Contains(resp.Body.String(), `"isAuthenticated":true`) || !strings.Contains(resp.Body.String(), `"username":"ada"`) {
		t.Fatalf("unexpected session %s", resp.Body.String())
	}

	// The placeholder scorer is not configured, so uploads are stored but scoring fails.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "cv.txt")
	part.Write([]byte("Experienced Go engineer"))
	mw.WriteField("companyName", "Acme")
	mw.Close()
	req = withSession(httptest.NewRequest(http.MethodPost, "/api/v1/resumes", &body))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp = serve(app, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from unconfigured scorer, got %d %s", resp.Code, resp.Body.String())
	}

	resp = serve(app, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/views/wipe", nil)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("mount wipe: %d %s", resp.Code, resp.Body.String())
	}
	var mounted struct {
		View struct {
			ID        string `json:"id"`
			CanDelete bool   `json:"canDelete"`
			Files     []any  `json:"files"`
		} `json:"view"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &mounted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !mounted.View.CanDelete || len(mounted.View.Files) != 1 {
		t.Fatalf("expected the uploaded file to be listed, got %+v", mounted.View)
	}

	resp = serve(app, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/views/"+mounted.View.ID+"/delete", nil)))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"flushed":true`) {
		t.Fatalf("wipe: %d %s", resp.Code, resp.Body.String())
	}

	resp = serve(app, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"resumes":[]`) {
		t.Fatalf("expected empty listing, got %d %s", resp.Code, resp.Body.String())
	}
}

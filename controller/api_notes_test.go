package controller

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pourmind/pym/fixtures"
	"github.com/pourmind/pym/model"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestAPI(t *testing.T) (*echo.Echo, *model.Store) {
	t.Helper()
	store := fixtures.NewTestStore(t)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.HTTPErrorHandler = httpErrorHandler(testLogger())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))

	ctrl := &controller{
		model:    store,
		requests: NewRequestCounter(),
		writes:   newWriteLimiter(defaultMaxConcurrentWrites, defaultWriteTimeout),
	}
	ctrl.noteInit(e)
	ctrl.authInit(e)
	ctrl.metricsInit(e)

	return e, store
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAPISubmitNote(t *testing.T) {
	e, _ := setupTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/notes/submit/", `{"content": "hello world"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var result APISubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if !result.Success {
		t.Error("success should be true")
	}
	if result.Note.ID == 0 {
		t.Error("created note should have an id")
	}
	if result.Note.Content != "hello world" {
		t.Errorf("content = %q, want %q", result.Note.Content, "hello world")
	}
	if result.Note.Author != model.AnonymousAuthor {
		t.Errorf("author = %q, want %q", result.Note.Author, model.AnonymousAuthor)
	}
	if result.Note.ReplyCount != 0 {
		t.Errorf("reply_count = %d, want 0", result.Note.ReplyCount)
	}
}

func TestAPISubmitNote_WhitespaceOnly(t *testing.T) {
	e, store := setupTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/notes/submit/", `{"content": "   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body struct {
		ErrorCode string            `json:"error_code"`
		Fields    map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if body.ErrorCode != "INVALID_INPUT" {
		t.Errorf("error_code = %q, want INVALID_INPUT", body.ErrorCode)
	}
	if _, ok := body.Fields["content"]; !ok {
		t.Errorf("fields = %v, want content entry", body.Fields)
	}

	// Nothing was persisted.
	page, err := store.ListRootNotes(1, 50)
	if err != nil {
		t.Fatalf("ListRootNotes failed: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0 after rejected submission", page.TotalCount)
	}
}

func TestAPIReplyAndDetail(t *testing.T) {
	e, store := setupTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	rec := doJSON(e, http.MethodPost, fmt.Sprintf("/api/notes/%d/reply/", data.Note.ID),
		`{"content": "nice!", "author_name": "Jane", "is_anonymous": false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var replyResult APIReplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &replyResult); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if replyResult.Reply.ParentID != data.Note.ID {
		t.Errorf("parent_id = %d, want %d", replyResult.Reply.ParentID, data.Note.ID)
	}
	if replyResult.Reply.Author != "Jane" {
		t.Errorf("author = %q, want %q", replyResult.Reply.Author, "Jane")
	}

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/notes/%d/", data.Note.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("detail Status = %d, want %d", rec.Code, http.StatusOK)
	}
	var detail APINoteDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if detail.Note.ReplyCount != 1 {
		t.Errorf("reply_count = %d, want 1", detail.Note.ReplyCount)
	}
	if len(detail.Note.Replies) != 1 {
		t.Fatalf("replies count = %d, want 1", len(detail.Note.Replies))
	}
	if detail.Note.Replies[0].ID != replyResult.Reply.ID {
		t.Errorf("reply id = %d, want %d", detail.Note.Replies[0].ID, replyResult.Reply.ID)
	}
}

func TestAPIDetail_NotFound(t *testing.T) {
	e, _ := setupTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/notes/99999/", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAPIReply_ParentNotFound(t *testing.T) {
	e, store := setupTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/notes/99999/reply/", `{"content": "nice!"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	page, err := store.ListRootNotes(1, 50)
	if err != nil {
		t.Fatalf("ListRootNotes failed: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("note count = %d, want 0 after rejected reply", page.TotalCount)
	}
}

func TestAPIReply_ToReplyRejected(t *testing.T) {
	e, store := setupTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	reply := fixtures.Note(
		fixtures.WithContent("An existing reply."),
		fixtures.ReplyTo(data.Note.ID),
	)
	if err := store.CreateNote(reply); err != nil {
		t.Fatalf("CreateNote reply failed: %v", err)
	}

	rec := doJSON(e, http.MethodPost, fmt.Sprintf("/api/notes/%d/reply/", reply.ID),
		`{"content": "nested reply attempt"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if _, ok := body.Fields["parent"]; !ok {
		t.Errorf("fields = %v, want parent entry", body.Fields)
	}
}

func TestAPIFeed(t *testing.T) {
	e, store := setupTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	for i := 0; i < 2; i++ {
		note := fixtures.Note(fixtures.WithContent("Another root thought for the feed."))
		if err := store.CreateNote(note); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
	}
	reply := fixtures.Note(
		fixtures.WithContent("A reply that must not show up."),
		fixtures.ReplyTo(data.Note.ID),
	)
	if err := store.CreateNote(reply); err != nil {
		t.Fatalf("CreateNote reply failed: %v", err)
	}

	rec := doJSON(e, http.MethodGet, "/api/notes/?per_page=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var feed APINoteList
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if len(feed.Notes) != 2 {
		t.Errorf("page size = %d, want 2", len(feed.Notes))
	}
	if feed.TotalCount != 3 {
		t.Errorf("total_count = %d, want 3 (reply excluded)", feed.TotalCount)
	}
	if !feed.HasNext || feed.HasPrevious {
		t.Errorf("has_next = %v, has_previous = %v", feed.HasNext, feed.HasPrevious)
	}
	if feed.CurrentPage != 1 || feed.TotalPages != 2 {
		t.Errorf("current_page = %d, total_pages = %d, want 1 and 2", feed.CurrentPage, feed.TotalPages)
	}
	for _, n := range feed.Notes {
		if n.ID == reply.ID {
			t.Error("feed contains a reply")
		}
	}
	// Seeded note carries one reply now.
	rec = doJSON(e, http.MethodGet, "/api/notes/?page=2&per_page=2", "")
	var page2 APINoteList
	if err := json.Unmarshal(rec.Body.Bytes(), &page2); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if len(page2.Notes) != 1 {
		t.Fatalf("page 2 size = %d, want 1", len(page2.Notes))
	}
	if page2.Notes[0].ID != data.Note.ID || page2.Notes[0].ReplyCount != 1 {
		t.Errorf("oldest note id = %d reply_count = %d, want %d and 1",
			page2.Notes[0].ID, page2.Notes[0].ReplyCount, data.Note.ID)
	}
}

func TestAPISubmitNote_FormEncoded(t *testing.T) {
	e, _ := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/notes/submit/",
		strings.NewReader("content=posted+from+a+plain+form&author_name=Jane"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var result APISubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if result.Note.Author != "Jane" {
		t.Errorf("author = %q, want %q", result.Note.Author, "Jane")
	}
}

func TestAPIAbout(t *testing.T) {
	e, _ := setupTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/about/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	var about APIAboutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &about); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if about.About.Name != "Pour Your Mind" {
		t.Errorf("name = %q, want %q", about.About.Name, "Pour Your Mind")
	}
	if len(about.About.Features) != 4 {
		t.Errorf("features count = %d, want 4", len(about.About.Features))
	}
}

func TestAPISubmitNote_AnonymousFlagHidesName(t *testing.T) {
	e, _ := setupTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/notes/submit/",
		`{"content": "hidden name thought", "author_name": "Jane", "is_anonymous": true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var result APISubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}
	if result.Note.Author != model.AnonymousAuthor {
		t.Errorf("author = %q, want %q despite stored name", result.Note.Author, model.AnonymousAuthor)
	}
	if !result.Note.IsAnonymous {
		t.Error("is_anonymous should be true")
	}
}

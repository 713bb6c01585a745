package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfBlog/crud"
	"wtfBlog/domain"
)

// newTestServer wires a server to a fresh in-memory database. The page
// cache is disabled so listing assertions always see fresh data.
func newTestServer(t *testing.T) (*Server, *crud.Services) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	services, err := crud.NewServices(
		db,
		crud.WithUser("test-pepper", "test-hmac-key"),
		crud.WithGroup(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(t.TempDir()),
	)
	if err != nil {
		t.Fatalf("failed creating services: %v", err)
	}
	return NewServer(false, "test-csrf-key", 0, services), services
}

func createTestUser(t *testing.T, s *crud.Services, username string) *domain.User {
	t.Helper()
	user := domain.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "password123",
	}
	if err := s.User.Create(context.Background(), &user); err != nil {
		t.Fatalf("failed creating user %s: %v", username, err)
	}
	return &user
}

// tinyGIF is a valid 1x1 gif, enough to pass the upload validations.
var tinyGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04,
	0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x4c, 0x01, 0x00, 0x3b,
}

// multipartForm encodes the given fields the way the post submission
// routes expect them.
func multipartForm(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	return multipartUpload(t, fields, "", nil)
}

// multipartUpload encodes the given fields plus, when a filename is
// set, an image file part with the given content.
func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed writing form field %s: %v", name, err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("failed creating form file: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("failed writing form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// authCookie builds the session cookie of the given user.
func authCookie(user *domain.User) *http.Cookie {
	return &http.Cookie{Name: rememberCookie, Value: user.Remember}
}

func TestAnonymousFeedRedirectsToLogin(t *testing.T) {
	server, _ := newTestServer(t)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/follow", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location = %q, want a /login redirect", loc)
	}
}

func TestUnknownGroupIs404(t *testing.T) {
	server, _ := newTestServer(t)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/group/no-such-group", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUnknownProfileIs404(t *testing.T) {
	server, _ := newTestServer(t)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/nobody", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestIndexListsPosts(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")
	post := domain.Post{UserID: author.ID, Text: "hello world", PubDate: time.Now()}
	if err := services.Post.Create(&post); err != nil {
		t.Fatalf("failed creating post: %v", err)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp pageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed decoding index response: %v", err)
	}
	if len(resp.Page.Items) != 1 {
		t.Fatalf("index lists %d posts, want 1", len(resp.Page.Items))
	}
	if resp.Page.Items[0].Text != "hello world" {
		t.Errorf("listed post text = %q, want %q", resp.Page.Items[0].Text, "hello world")
	}
}

func TestFollowEndpoint(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")
	follower := createTestUser(t, services, "bob")

	req := httptest.NewRequest("POST", "/alice/follow", nil)
	req.AddCookie(authCookie(follower))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/alice" {
		t.Errorf("Location = %q, want %q", loc, "/alice")
	}
	following, err := services.Follow.IsFollowing(follower.ID, author.ID)
	if err != nil {
		t.Fatalf("IsFollowing returned error: %v", err)
	}
	if !following {
		t.Errorf("follow endpoint did not create the follow")
	}
}

func TestNewPostEndpoint(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")

	body, contentType := multipartForm(t, map[string]string{"text": "first post"})
	req := httptest.NewRequest("POST", "/new", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(author))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}

	page, err := services.Post.All(1)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Text != "first post" {
		t.Errorf("submitted post was not published")
	}
}

func TestNewPostWithImage(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")

	body, contentType := multipartUpload(t, map[string]string{"text": "with picture"}, "pic.gif", tinyGIF)
	req := httptest.NewRequest("POST", "/new", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(author))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}

	page, err := services.Post.All(1)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d posts, want 1", len(page.Items))
	}
	if page.Items[0].ImageURL == "" {
		t.Errorf("stored post has no image url")
	}
}

func TestNewPostWithBadImageRollsBack(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")

	body, contentType := multipartUpload(t, map[string]string{"text": "doomed"}, "fake.png", []byte("not an image"))
	req := httptest.NewRequest("POST", "/new", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(author))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	page, err := services.Post.All(1)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("post with rejected image was published anyway")
	}
}

func TestEditWithBadImageLeavesPostUntouched(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")
	post := domain.Post{UserID: author.ID, Text: "original", PubDate: time.Now()}
	if err := services.Post.Create(&post); err != nil {
		t.Fatalf("failed creating post: %v", err)
	}

	body, contentType := multipartUpload(t, map[string]string{"text": "edited"}, "fake.png", []byte("not an image"))
	req := httptest.NewRequest("POST", fmt.Sprintf("/alice/%d/edit", post.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(authCookie(author))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	got, err := services.Post.ByIDAndAuthor("alice", post.ID)
	if err != nil {
		t.Fatalf("ByIDAndAuthor returned error: %v", err)
	}
	if got.Text != "original" {
		t.Errorf("rejected edit changed the text to %q", got.Text)
	}
	if got.ImageURL != "" {
		t.Errorf("rejected edit attached an image url %q", got.ImageURL)
	}
}

func TestEmptyCommentRejected(t *testing.T) {
	server, services := newTestServer(t)
	author := createTestUser(t, services, "alice")
	post := domain.Post{UserID: author.ID, Text: "hello world", PubDate: time.Now()}
	if err := services.Post.Create(&post); err != nil {
		t.Fatalf("failed creating post: %v", err)
	}

	form := url.Values{"text": {"   "}}
	req := httptest.NewRequest("POST", fmt.Sprintf("/alice/%d/comment", post.ID),
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(authCookie(author))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	comments, err := services.Comment.ByPost(post.ID)
	if err != nil {
		t.Fatalf("ByPost returned error: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("rejected comment was stored anyway")
	}
}

func TestLoginAndLogout(t *testing.T) {
	server, services := newTestServer(t)
	user := createTestUser(t, services, "alice")
	oldToken := user.Remember

	login := `{"email": "alice@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(login))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	req = httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(authCookie(user))
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	// The old token must be dead after logout.
	if _, err := services.User.ByRemember(oldToken); err == nil {
		t.Errorf("old remember token still resolves a user after logout")
	}
}

func TestWrongPasswordIs401(t *testing.T) {
	server, services := newTestServer(t)
	createTestUser(t, services, "alice")

	login := `{"email": "alice@example.com", "password": "wrong"}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(login))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

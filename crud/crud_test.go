package crud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfBlog/domain"
)

// setupDB opens a fresh in-memory database with all migrations run.
func setupDB(t *testing.T) *gorm.DB {
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
	return db
}

func setupServices(t *testing.T) *Services {
	t.Helper()
	services, err := NewServices(
		setupDB(t),
		WithUser("test-pepper", "test-hmac-key"),
		WithGroup(),
		WithPost(),
		WithComment(),
		WithFollow(),
	)
	if err != nil {
		t.Fatalf("failed creating services: %v", err)
	}
	return services
}

func createTestUser(t *testing.T, s *Services, username string) *domain.User {
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

func createTestGroup(t *testing.T, s *Services, title, slug string) *domain.Group {
	t.Helper()
	group := domain.Group{Title: title, Slug: slug}
	if err := s.Group.Create(&group); err != nil {
		t.Fatalf("failed creating group %s: %v", slug, err)
	}
	return &group
}

// createTestPost publishes a post with an explicit publication date so
// ordering assertions don't depend on insert timing.
func createTestPost(t *testing.T, s *Services, author *domain.User, text string, pubDate time.Time) *domain.Post {
	t.Helper()
	post := domain.Post{
		UserID:  author.ID,
		Text:    text,
		PubDate: pubDate,
	}
	if err := s.Post.Create(&post); err != nil {
		t.Fatalf("failed creating post %q: %v", text, err)
	}
	return &post
}

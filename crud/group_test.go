package crud

import (
	"testing"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

func TestGroupBySlug(t *testing.T) {
	s := setupServices(t)
	createTestGroup(t, s, "Gophers", "gophers")

	group, err := s.Group.BySlug("gophers")
	if err != nil {
		t.Fatalf("BySlug returned error: %v", err)
	}
	if group.Title != "Gophers" {
		t.Errorf("got title %q, want %q", group.Title, "Gophers")
	}

	if _, err := s.Group.BySlug("missing"); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("got error %v, want ENOTFOUND", err)
	}
}

func TestGroupSlugTaken(t *testing.T) {
	s := setupServices(t)
	createTestGroup(t, s, "Gophers", "gophers")

	dupe := domain.Group{Title: "Other", Slug: "gophers"}
	err := s.Group.Create(&dupe)
	if errs.ErrorCode(err) != errs.ECONFLICT {
		t.Errorf("got error %v, want ECONFLICT", err)
	}
}

func TestGroupSlugFormat(t *testing.T) {
	s := setupServices(t)
	bad := domain.Group{Title: "Bad", Slug: "Not A Slug"}
	err := s.Group.Create(&bad)
	if errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("got error %v, want EINVALID", err)
	}
}

func TestGroupsOrderedByTitle(t *testing.T) {
	s := setupServices(t)
	createTestGroup(t, s, "zebra", "zebra")
	createTestGroup(t, s, "alpha", "alpha")

	groups, err := s.Group.All()
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(groups) != 2 || groups[0].Title != "alpha" {
		t.Errorf("groups not ordered by title")
	}
}

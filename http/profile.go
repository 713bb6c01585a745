package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

func (s *Server) registerProfileRoutes(r *mux.Router) {
	r.HandleFunc("/{username}", s.handleProfile).Methods("GET")
	r.HandleFunc("/{username}/follow", s.requireAuth(s.handleFollow)).Methods("POST")
	r.HandleFunc("/{username}/unfollow", s.requireAuth(s.handleUnfollow)).Methods("POST")
	r.HandleFunc("/{username}/{post_id:[0-9]+}", s.handlePostDetail).Methods("GET")
	r.HandleFunc("/{username}/{post_id:[0-9]+}/edit", s.requireAuth(s.handleEditPost)).Methods("POST")
	r.HandleFunc("/{username}/{post_id:[0-9]+}/comment", s.requireAuth(s.handleAddComment)).Methods("POST")
}

// profileResponse is the json shape of the profile page: the author's
// stats, one page of their posts, and how the viewer relates to them.
type profileResponse struct {
	Author         *domain.User `json:"author"`
	PostCount      int64        `json:"post_count"`
	Latest         *domain.Post `json:"latest_post,omitempty"`
	Page           *domain.Page `json:"page"`
	Following      bool         `json:"following"`
	CountFollowers int64        `json:"count_followers"`
	CountFollowing int64        `json:"count_following"`
}

// handleProfile handles the route "GET /{username}".
// It returns the author's profile: their paginated posts, post count,
// most recent post, follower numbers, and whether the signed-in viewer
// follows them. An unknown username is a 404.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	profile, page, err := s.ps.ByAuthor(username, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	resp := profileResponse{
		Author:    profile.Author,
		PostCount: profile.PostCount,
		Latest:    profile.Latest,
		Page:      page,
	}
	viewer := s.getUserFromContext(r.Context())
	if viewer != nil && viewer.ID != profile.Author.ID {
		resp.Following, err = s.fs.IsFollowing(viewer.ID, profile.Author.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}
	if resp.CountFollowers, err = s.fs.CountFollowers(profile.Author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if resp.CountFollowing, err = s.fs.CountFollowing(profile.Author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, &resp)
}

// handleFollow handles the route "POST /{username}/follow".
// Following yourself or an author you already follow changes nothing.
// Either way the caller lands back on the profile.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	follow := domain.Follow{
		FollowerID: user.ID,
		FollowedID: author.ID,
	}
	if err := s.fs.Create(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+author.Username, http.StatusFound)
}

// handleUnfollow handles the route "POST /{username}/unfollow".
// Unfollowing an author you don't follow changes nothing.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	follow := domain.Follow{
		FollowerID: user.ID,
		FollowedID: author.ID,
	}
	if err := s.fs.Delete(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+author.Username, http.StatusFound)
}

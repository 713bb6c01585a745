package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlog/errs"
)

func (s *Server) registerGroupRoutes(r *mux.Router) {
	r.HandleFunc("/groups", s.handleListGroups).Methods("GET")
	r.HandleFunc("/group/{slug}", s.handleGroupPosts).Methods("GET")
}

// handleListGroups handles the route "GET /groups".
// It returns every group, for the new-post form's group picker.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.gs.All()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, groups)
}

// handleGroupPosts handles the route "GET /group/{slug}".
// It returns the group and one page of the posts published to it,
// newest first. An unknown slug is a 404.
func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	group, page, err := s.ps.ByGroup(slug, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"group": group,
		"page":  page,
	})
}

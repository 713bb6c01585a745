package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// handleAddComment handles the route "POST /{username}/{post_id}/comment".
// It appends a comment by the signed-in user to the addressed post.
// Empty text is rejected and leaves the thread unchanged.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	postID, err := strconv.Atoi(mux.Vars(r)["post_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post id format."))
		return
	}
	post, err := s.ps.ByIDAndAuthor(username, postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	comment := domain.Comment{
		UserID: user.ID,
		PostID: post.ID,
		Text:   r.FormValue("text"),
	}
	if err := s.cs.Create(&comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, &comment)
}

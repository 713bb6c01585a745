package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router, cache *PageCache) {
	// The index listing sits behind the short-lived page cache, it's
	// the busiest page and tolerates a few seconds of staleness.
	r.Handle("/", cache.Wrap(http.HandlerFunc(s.handleIndex))).Methods("GET")
	r.HandleFunc("/follow", s.requireAuth(s.handleFeed)).Methods("GET")
	r.HandleFunc("/new", s.requireAuth(s.handleNewPost)).Methods("POST")
}

// pageResponse is the json shape of every post listing.
type pageResponse struct {
	Page *domain.Page `json:"page"`
}

// handleIndex handles the route "GET /".
// It returns one page of all posts, newest first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.ps.All(parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, &pageResponse{Page: page})
}

// handleFeed handles the route "GET /follow".
// It returns one page of posts by the authors the signed-in user
// follows. A user following no one gets an empty page.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	page, err := s.ps.Feed(user.ID, parsePage(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, &pageResponse{Page: page})
}

// handleNewPost handles the route "POST /new".
// It reads the submitted text, optional group and optional image from
// a multipart form and publishes a post for the signed-in user.
func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	user := s.getUserFromContext(r.Context())
	post := domain.Post{
		UserID: user.ID,
		Text:   r.FormValue("text"),
	}
	if raw := r.FormValue("group_id"); raw != "" {
		groupID, err := strconv.Atoi(raw)
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid group id format."))
			return
		}
		post.GroupID = &groupID
	}
	if err := s.ps.Create(&post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.attachImage(r, &post); err != nil {
		// A bad image rolls the whole submission back, the post
		// must not appear without it.
		if derr := s.ps.Delete(&post); derr != nil {
			errs.LogError(r, derr)
		}
		errs.ReturnError(w, r, err)
		return
	}
	if post.ImageURL != "" {
		if err := s.ps.Update(&post, user.ID); err != nil {
			if derr := s.ps.Delete(&post); derr != nil {
				errs.LogError(r, derr)
			}
			errs.ReturnError(w, r, err)
			return
		}
	}
	respondJSON(w, r, http.StatusCreated, &post)
}

// handlePostDetail handles the route "GET /{username}/{post_id}".
// It returns the post and its comments in thread order.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
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
	comments, err := s.cs.ByPost(post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"post":     post,
		"comments": comments,
	})
}

// handleEditPost handles the route "POST /{username}/{post_id}/edit".
// Only the author may edit; anyone else is bounced back to the post
// without an error page, leaving the record untouched. A rejected
// image rejects the whole edit: the prior text and group are restored
// before the error goes out.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
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
	prior := *post
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	post.Text = r.FormValue("text")
	post.GroupID = nil
	if raw := r.FormValue("group_id"); raw != "" {
		groupID, err := strconv.Atoi(raw)
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid group id format."))
			return
		}
		post.GroupID = &groupID
	}

	user := s.getUserFromContext(r.Context())
	if err := s.ps.Update(post, user.ID); err != nil {
		if errs.ErrorCode(err) == errs.EUNAUTHORIZED {
			http.Redirect(w, r, fmt.Sprintf("/%s/%d", username, postID), http.StatusFound)
			return
		}
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.attachImage(r, post); err != nil {
		if rerr := s.ps.Update(&prior, user.ID); rerr != nil {
			errs.LogError(r, rerr)
		}
		errs.ReturnError(w, r, err)
		return
	}
	if post.ImageURL != prior.ImageURL {
		if err := s.ps.Update(post, user.ID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}
	respondJSON(w, r, http.StatusOK, post)
}

// attachImage stores an uploaded image for the post, if the request
// carries one, and records its URL on the post. The new image goes to
// disk first and the replaced one is evicted after, so a rejected
// upload leaves the previous image intact. The caller persists the
// recorded URL.
func (s *Server) attachImage(r *http.Request, post *domain.Post) error {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile || r.MultipartForm == nil {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	img := domain.Image{
		OwnerType: domain.OwnerTypePost,
		OwnerID:   post.ID,
		File:      file,
		Filename:  header.Filename,
	}
	if err := s.is.Create(&img); err != nil {
		return err
	}
	old, err := s.is.ByOwner(domain.OwnerTypePost, post.ID)
	if err != nil {
		return err
	}
	for i := range old {
		if old[i].Filename == img.Filename {
			continue
		}
		if err := s.is.Delete(&old[i]); err != nil {
			return err
		}
	}
	post.ImageURL = img.URL
	return nil
}

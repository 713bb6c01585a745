package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"wtfBlog/crud"
	"wtfBlog/domain"
	"wtfBlog/errs"
)

// Server provides most of the http functionality of this app, namely
// routing, request handling, and middleware. It also performs
// authentication and authorization before handing things over to one
// of the crud services.
type Server struct {
	router *mux.Router
	isProd bool
	us     domain.UserService
	gs     domain.GroupService
	ps     domain.PostService
	cs     domain.CommentService
	fs     domain.FollowService
	is     domain.ImageService
}

// NewServer returns a new instance of the server, registers all
// necessary routes and gives their handlers access to the app services
// passed in. The cacheTTL controls the page cache wrapped around the
// index listing; a TTL of zero disables it.
func NewServer(isProd bool, csrfKey string, cacheTTL time.Duration, services *crud.Services) *Server {
	s := &Server{
		router: mux.NewRouter(),
		isProd: isProd,
		us:     services.User,
		gs:     services.Group,
		ps:     services.Post,
		cs:     services.Comment,
		fs:     services.Follow,
		is:     services.Image,
	}

	cache := NewPageCache(cacheTTL)

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system. The listing and submission
	// routes with fixed paths come first, the /{username} tree last,
	// so the catch-all profile route can't shadow them.
	s.registerPostRoutes(s.router, cache)
	s.registerGroupRoutes(s.router)
	s.registerProfileRoutes(s.router)

	s.router.NotFoundHandler = http.HandlerFunc(handleNotFound)

	// Set up middleware that needs to run on every request. CSRF
	// protection only runs in production, where the cookie can be
	// marked secure.
	if isProd {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(true), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	s.router.Use(setContentTypeJSON, s.checkUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// handleNotFound answers any unresolved route with a json 404.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The page does not exist."))
}

// ServeHTTP makes the server usable anywhere an http.Handler is,
// which is what the tests rely on.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}

// parsePage reads the 1-based page number from the request's query
// string. Anything unparsable counts as page 1; out-of-range values
// are clamped later, when the total is known.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// respondJSON writes a json response with the given status code.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// Package shell maps client paths to controllers and keeps exactly one of
// them active at a time.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/flipbook/internal/logging"
	"github.com/gorilla/mux"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrNoPages       = errors.New("pages not registered")
)

// Route names.
const (
	RouteRecent = "recent"
	RouteUpload = "upload"
	RouteViewer = "viewer"
)

// Page is a controller without parameters.
type Page interface {
	Activate(ctx context.Context) error
	Deactivate()
}

// ViewerPage is a controller bound to one flipbook id.
type ViewerPage interface {
	Activate(ctx context.Context, id string) error
	Deactivate()
}

type Pages struct {
	Recent Page
	Upload Page
	Viewer ViewerPage
}

// Location is a resolved path.
type Location struct {
	Path  string
	Route string
	ID    string
}

type Shell struct {
	router *mux.Router
	logger logging.Logger

	navMu sync.Mutex

	mu      sync.Mutex
	pages   *Pages
	current Location
	active  func()
	watch   []func(Location)
}

func New(logger logging.Logger) *Shell {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := mux.NewRouter().UseEncodedPath()
	r.NewRoute().Methods(http.MethodGet).Path("/").Name(RouteRecent)
	r.NewRoute().Methods(http.MethodGet).Path("/upload").Name(RouteUpload)
	r.NewRoute().Methods(http.MethodGet).Path("/flipbook/{id}").Name(RouteViewer)

	return &Shell{router: r, logger: logger.With("component", "shell")}
}

// Register installs the controllers. It must be called before Navigate.
func (s *Shell) Register(p Pages) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = &p
}

// OnNavigate registers fn to be called after every successful navigation.
func (s *Shell) OnNavigate(fn func(Location)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watch = append(s.watch, fn)
}

// Resolve matches path against the route table. Matching runs on the
// escaped path, so an id may carry an encoded "/".
func (s *Shell) Resolve(path string) (Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrRouteNotFound, path)
	}
	escaped := u.EscapedPath()
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: u.Path, RawPath: escaped}}

	var m mux.RouteMatch
	if !s.router.Match(req, &m) || m.Route == nil {
		return Location{}, fmt.Errorf("%w: %q", ErrRouteNotFound, path)
	}
	id, err := url.PathUnescape(m.Vars["id"])
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrRouteNotFound, path)
	}
	return Location{Path: escaped, Route: m.Route.GetName(), ID: id}, nil
}

// Navigate deactivates the current controller and activates the one for
// path. Navigating to the current path reloads it.
func (s *Shell) Navigate(ctx context.Context, path string) error {
	loc, err := s.Resolve(path)
	if err != nil {
		s.logger.Warn(ctx, "navigation rejected", "path", path)
		return err
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	pages := s.pages
	prev := s.active
	s.active = nil
	s.mu.Unlock()

	if pages == nil {
		return ErrNoPages
	}
	if prev != nil {
		prev()
	}

	var deactivate func()
	switch loc.Route {
	case RouteRecent:
		deactivate = pages.Recent.Deactivate
		err = pages.Recent.Activate(ctx)
	case RouteUpload:
		deactivate = pages.Upload.Deactivate
		err = pages.Upload.Activate(ctx)
	case RouteViewer:
		deactivate = pages.Viewer.Deactivate
		err = pages.Viewer.Activate(ctx, loc.ID)
	}
	if err != nil {
		return fmt.Errorf("activate %s: %w", loc.Route, err)
	}

	s.mu.Lock()
	s.active = deactivate
	s.current = loc
	watch := append([]func(Location){}, s.watch...)
	s.mu.Unlock()

	s.logger.Debug(ctx, "navigated", "path", loc.Path, "route", loc.Route)
	for _, fn := range watch {
		fn(loc)
	}
	return nil
}

// Current is the location of the active controller.
func (s *Shell) Current() Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close deactivates the current controller.
func (s *Shell) Close() {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	prev := s.active
	s.active = nil
	s.current = Location{}
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
}

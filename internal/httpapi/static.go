package httpapi

import (
	"net/http"
	"path/filepath"
)

// handleIndex serves the single-page front end. The catch-all pattern also
// receives every unknown path, so anything that is not exactly "/" is a 404.
func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	a.servePage(w, r, "index.html")
}

func (a *API) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	a.servePage(w, r, "login.html")
}

func (a *API) servePage(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if a.staticDir == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(a.staticDir, name))
}

func (a *API) staticHandler() http.Handler {
	if a.staticDir == "" {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.Dir(a.staticDir)))
}

package routes

import (
	"net/http"
	"os"
)

// StaticRoutes serves the frontend bundle in dir. ok is false when dir is
// missing so the caller can skip mounting it.
func StaticRoutes(dir string) (handler http.Handler, ok bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return http.FileServer(http.Dir(dir)), true
}

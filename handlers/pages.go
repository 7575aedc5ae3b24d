package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Pages maps the dashboard routes to their HTML files.
var Pages = map[string]string{
	"/":          "index.html",
	"/dashboard": "dashboard.html",
	"/live_view": "live_view.html",
	"/streams":   "streams.html",
	"/zone":      "zone.html",
	"/dahua-fd":  "dahua-fd.html",
}

type PageHandler struct {
	staticDir string
}

func NewPageHandler(staticDir string) *PageHandler {
	return &PageHandler{staticDir: staticDir}
}

// Serve returns a handler for one page file. A missing file is a 404.
func (h *PageHandler) Serve(file string) gin.HandlerFunc {
	path := filepath.Join(h.staticDir, file)
	return func(c *gin.Context) {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		c.File(path)
	}
}

// Register adds every page route and the /static asset directory.
func (h *PageHandler) Register(router gin.IRouter) {
	for route, file := range Pages {
		router.GET(route, h.Serve(file))
	}
	router.Static("/static", filepath.Join(h.staticDir, "static"))
}

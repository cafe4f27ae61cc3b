package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html web/script.js
var webFS embed.FS

// PageTemplates parses the embedded landing page for gin's HTML renderer.
func PageTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(webFS, "web/index.html"))
}

// StaticFS serves the embedded browser assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

type PageHandler struct {
	title   string
	tagline string
}

func NewPageHandler() *PageHandler {
	return &PageHandler{
		title:   "CareBloom",
		tagline: "Basic health tips for everyday symptoms. Not a substitute for a doctor.",
	}
}

// GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   h.title,
		"Tagline": h.tagline,
	})
}

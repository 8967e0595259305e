package handlers

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates — страница -> разобранный шаблон (base + содержимое).
var pageTemplates = func() map[string]*template.Template {
	pages := []string{
		"index.html",
		"categories.html",
		"category.html",
		"topic.html",
		"new_topic.html",
		"sign_up.html",
		"login.html",
	}

	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		out[page] = template.Must(template.ParseFS(templateFS,
			"templates/base.html", "templates/"+page))
	}
	return out
}()

package handler

import (
	"embed"
	"html/template"
	"time"

	"yatube/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"mediaURL": imageURL,
	"postURL": func(p model.Post) string {
		return postURL(&p)
	},
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	},
	"excerpt": func(p model.Post) string {
		r := []rune(p.Text)
		if len(r) <= 300 {
			return p.Text
		}
		return string(r[:300]) + "…"
	},
}

// Templates 解析内嵌的页面模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

package interfaces

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

type Pages struct {
	signup  *template.Template
	success *template.Template
}

func NewPages() *Pages {
	return &Pages{
		signup:  template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/signup.html")),
		success: template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/success.html")),
	}
}

type signupPage struct {
	Title string
	Form  FormView
}

func (p *Pages) RenderSignup(w http.ResponseWriter, status int, form FormView) {
	render(w, p.signup, status, signupPage{Title: "Membership signup", Form: form})
}

func (p *Pages) RenderSuccess(w http.ResponseWriter) {
	render(w, p.success, http.StatusOK, signupPage{Title: "Welcome"})
}

// render executes into a buffer before the status line is written.
func render(w http.ResponseWriter, tmpl *template.Template, status int, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Error rendering template %s: %v", tmpl.Name(), err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

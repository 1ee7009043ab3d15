package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	templateVerification  = "verification.html"
	templatePasswordReset = "password_reset.html"
)

// TemplateManager управляет шаблонами email
type TemplateManager struct {
	templates *template.Template
}

func NewTemplateManager() (*TemplateManager, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &TemplateManager{templates: tpl}, nil
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tm.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

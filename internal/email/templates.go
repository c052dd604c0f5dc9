package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateManager parses and renders the HTML email templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	for name, body := range builtinTemplates {
		// Built-ins are compile-time constants, a parse failure is a bug.
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("email: invalid builtin template %q: %v", name, err))
		}
	}
	return tm
}

// Render executes a template with the given data.
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// AddTemplate registers a template by name.
func (tm *TemplateManager) AddTemplate(name, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}

var builtinTemplates = map[string]string{
	"review_approved": `<html><body>
<h2>You have a new review</h2>
<p>Hi {{.ProfileName}},</p>
<p>A new {{.Rating}}-star review of {{if .ServiceTitle}}your service "{{.ServiceTitle}}"{{else}}your profile{{end}} has been published.</p>
{{if .Comment}}<blockquote>{{.Comment}}</blockquote>{{end}}
<p><a href="{{.ActionURL}}">{{.ActionText}}</a></p>
</body></html>`,

	"review_received": `<html><body>
<h2>Review pending moderation</h2>
<p>A new {{.Rating}}-star review of {{.ProfileName}} is waiting for a moderation decision.</p>
<p><a href="{{.ActionURL}}">{{.ActionText}}</a></p>
</body></html>`,

	"notification": `<html><body>
<p>{{.Message}}</p>
</body></html>`,
}

package embed

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// SandboxPermissions is the fixed permission set granted to every embedded frame
var SandboxPermissions = []string{
	"allow-storage-access-by-user-activation",
	"allow-scripts",
	"allow-forms",
	"allow-popups",
	"allow-popups-to-escape-sandbox",
	"allow-same-origin",
	"allow-top-navigation-by-user-activation",
}

// Config describes one embedded provider
type Config struct {
	// Title is the panel heading
	Title string
	// FrameTitle is the accessible title of the iframe
	FrameTitle string
	// URL is the embed address, or Placeholder when the operator has not set it
	URL string
	// Placeholder is the documented unset value of URL
	Placeholder string
	// EnvVar names the variable the operator should set, used in the prompt
	EnvVar string
	// Permissions overrides SandboxPermissions when non-empty
	Permissions []string
	// ClassName is the CSS class of the panel container
	ClassName string
}

// Panel renders an external URL inside a sandboxed iframe. It has no state
// beyond whether its URL is configured.
type Panel struct {
	cfg Config
}

var panelTemplate = template.Must(template.New("panel").Parse(`<div class="embed-panel {{.ClassName}}">
  <h2>{{.Title}}</h2>
  {{- if .Configured}}
  <iframe title="{{.FrameTitle}}" width="100%" height="100%" src="{{.URL}}" frameborder="0" style="border:0" allowfullscreen sandbox="{{.Sandbox}}"></iframe>
  {{- else}}
  <p class="embed-setup">{{.Instruction}}</p>
  {{- end}}
</div>`))

func NewPanel(cfg Config) *Panel {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if len(cfg.Permissions) == 0 {
		cfg.Permissions = SandboxPermissions
	}
	if cfg.FrameTitle == "" {
		cfg.FrameTitle = cfg.Title
	}
	return &Panel{cfg: cfg}
}

func (p *Panel) Title() string {
	return p.cfg.Title
}

func (p *Panel) URL() string {
	return p.cfg.URL
}

// Configured reports whether the URL has been moved off its placeholder
func (p *Panel) Configured() bool {
	return p.cfg.URL != "" && p.cfg.URL != p.cfg.Placeholder
}

// Sandbox is the iframe sandbox attribute value
func (p *Panel) Sandbox() string {
	return strings.Join(p.cfg.Permissions, " ")
}

// Instruction is the text shown in place of the frame while unconfigured
func (p *Panel) Instruction() string {
	return fmt.Sprintf("Please replace %q by setting %s to your actual embed URL.", p.cfg.Placeholder, p.cfg.EnvVar)
}

// Render produces the panel markup
func (p *Panel) Render() (template.HTML, error) {
	var buf bytes.Buffer
	err := panelTemplate.Execute(&buf, struct {
		Title       string
		FrameTitle  string
		ClassName   string
		URL         string
		Sandbox     string
		Instruction string
		Configured  bool
	}{
		Title:       p.cfg.Title,
		FrameTitle:  p.cfg.FrameTitle,
		ClassName:   p.cfg.ClassName,
		URL:         p.cfg.URL,
		Sandbox:     p.Sandbox(),
		Instruction: p.Instruction(),
		Configured:  p.Configured(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s panel: %w", p.cfg.Title, err)
	}
	return template.HTML(buf.String()), nil
}

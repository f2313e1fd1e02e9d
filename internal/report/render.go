package report

import (
	"fmt"
	"html/template"
	"strings"
)

// RenderMarkdown produces the compact markdown digest.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", r.App)
	fmt.Fprintf(&b, "_Generated: %s_\n\n", r.Generated)

	b.WriteString("## Summary\n")
	for _, line := range r.Summary {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n")

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "## %s\n", headerFor(g.Priority))
		if len(g.Items) == 0 {
			b.WriteString("_None_\n\n")
			continue
		}
		for _, item := range g.Items {
			fmt.Fprintf(&b, "- **[%s]** %s  _(src: %s)_\n", item.Channel.Label(), item.Description, item.ItemID)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Skipped inputs\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s: %s\n", w.SourceFile, w.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"header": headerFor,
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .App }}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; margin: 40px; }
    h1 { margin: 0 0 6px 0; }
    .muted { color: #666; }
    .card { border: 1px solid #eee; border-radius: 14px; padding: 18px; margin: 14px 0; }
    ul { margin: 10px 0 0 18px; }
    li { margin: 10px 0; line-height: 1.35; }
    .src { color: #777; font-size: 12px; margin-left: 8px; white-space: nowrap; }
    .cols { display: grid; grid-template-columns: 1fr 1fr 1fr; gap: 14px; }
    @media (max-width: 980px) { .cols { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <h1>{{ .App }}</h1>
  <div class="muted">Generated: {{ .Generated }}</div>

  <div class="card">
    <h2 style="margin-top:0;">Summary</h2>
    <ul>
      {{- range .Summary }}
      <li>{{ . }}</li>
      {{- end }}
    </ul>
  </div>

  <div class="cols">
    {{- range .Groups }}
    <div class="card" style="margin:0;">
      <h3 style="margin-top:0;">{{ header .Priority }}</h3>
      <ul>
        {{- if not .Items }}
        <li class="muted">None</li>
        {{- end }}
        {{- range .Items }}
        <li>
          <b>[{{ .Channel.Label }}]</b> {{ .Description }}
          <span class="src">src: {{ .ItemID }}</span>
        </li>
        {{- end }}
      </ul>
    </div>
    {{- end }}
  </div>
</body>
</html>
`))

// RenderHTML produces the compact single-page HTML digest.
func RenderHTML(r *Report) (string, error) {
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, r); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return b.String(), nil
}

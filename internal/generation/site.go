package generation

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"domin8x/internal/models"
)

// ImportSite waits delay, or until ctx is done, and returns the stock block
// layout for url. The page itself is never fetched.
func ImportSite(ctx context.Context, delay time.Duration, url string) (*models.ImportedSite, error) {
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}
	return &models.ImportedSite{
		URL:   url,
		Title: "Imported Website",
		Elements: []models.SiteElement{
			{
				ID: "header", Type: "header",
				Content: "Welcome to Our Website",
				Styles:  models.SiteStyles{BackgroundColor: "#1F2937", Color: "#FFFFFF", FontSize: "2rem", Padding: "20px", TextAlign: "center"},
			},
			{
				ID: "hero", Type: "section",
				Content: "This is the hero section with amazing content that will capture your attention.",
				Styles:  models.SiteStyles{BackgroundColor: "#3B82F6", Color: "#FFFFFF", FontSize: "1.5rem", Padding: "60px 20px", TextAlign: "center"},
			},
			{
				ID: "content", Type: "section",
				Content: "Main content area with lots of interesting information about our services.",
				Styles:  models.SiteStyles{BackgroundColor: "#FFFFFF", Color: "#374151", FontSize: "1rem", Padding: "40px 20px", LineHeight: "1.6"},
			},
			{
				ID: "footer", Type: "footer",
				Content: "© 2024 Website. All rights reserved.",
				Styles:  models.SiteStyles{BackgroundColor: "#111827", Color: "#9CA3AF", FontSize: "0.9rem", Padding: "20px", TextAlign: "center"},
			},
		},
	}, nil
}

var siteTemplate = template.Must(template.New("site").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{if .Title}}{{.Title}}{{else}}Generated Website{{end}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }
{{- range .Elements}}
        #{{.ID}} {
            background-color: {{.Styles.BackgroundColor}};
            color: {{.Styles.Color}};
            font-size: {{.Styles.FontSize}};
            padding: {{.Styles.Padding}};
{{- with .Styles.TextAlign}}
            text-align: {{.}};
{{- end}}
{{- with .Styles.LineHeight}}
            line-height: {{.}};
{{- end}}
        }
{{- end}}
    </style>
</head>
<body>
{{- range .Elements}}
{{- if eq .Type "header"}}
    <header id="{{.ID}}">{{.Content}}</header>
{{- else if eq .Type "footer"}}
    <footer id="{{.ID}}">{{.Content}}</footer>
{{- else}}
    <div id="{{.ID}}">{{.Content}}</div>
{{- end}}
{{- end}}
</body>
</html>
`))

// SiteHTML renders site as a standalone page. Element text is HTML escaped
// and unsafe style values are replaced.
func SiteHTML(site *models.ImportedSite) (string, error) {
	var buf bytes.Buffer
	if err := siteTemplate.Execute(&buf, site); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/internal/criteria"
)

const reportTimeLayout = "2006-01-02 15:04:05"

var listingsTemplate = template.Must(template.New("listings").Parse(`{{define "listings"}}
{{- if .Standalone}}<!DOCTYPE html>
<html>
<head>
<title>New {{.Label}} Listings</title>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.listing { margin-bottom: 20px; padding: 10px; border: 1px solid #ddd; border-radius: 5px; }
.listing h3 { margin-top: 0; }
</style>
</head>
{{- else}}<html>
{{- end}}
<body>
<h2>Found {{.Count}} new {{.Label}} listings{{if .Generated}} - {{.Generated}}{{end}}</h2>
<h3>Criteria: {{.Criteria}}</h3>
{{- range .Listings}}
<div class="listing" style="margin-bottom: 20px; padding: 10px; border: 1px solid #ddd; border-radius: 5px;">
<h3><a href="{{.URL}}" target="_blank">{{.Title}}</a></h3>
<p><strong>Details:</strong> {{.Details}}</p>
<p><strong>Price:</strong> {{.Price}}</p>
<p><a href="{{.URL}}" target="_blank">View listing</a></p>
</div>
{{- end}}
</body>
</html>
{{end}}`))

type pageData struct {
	Standalone bool
	Label      string
	Count      int
	Generated  string
	Criteria   string
	Listings   []crawler.Listing
}

func render(data pageData) (string, error) {
	var buf bytes.Buffer
	if err := listingsTemplate.ExecuteTemplate(&buf, "listings", data); err != nil {
		return "", fmt.Errorf("failed to render listings: %w", err)
	}
	return buf.String(), nil
}

// RenderEmailBody renders listings as an HTML email body
func RenderEmailBody(listings []crawler.Listing, c criteria.Criteria) (string, error) {
	return render(pageData{
		Label:    label(c),
		Count:    len(listings),
		Criteria: c.Describe(),
		Listings: listings,
	})
}

// RenderReportFile renders listings as a standalone HTML document and names it after now
func RenderReportFile(listings []crawler.Listing, c criteria.Criteria, now time.Time) (string, string, error) {
	html, err := render(pageData{
		Standalone: true,
		Label:      label(c),
		Count:      len(listings),
		Generated:  now.Format(reportTimeLayout),
		Criteria:   c.Describe(),
		Listings:   listings,
	})
	if err != nil {
		return "", "", err
	}
	return ReportFilename(now), html, nil
}

// ReportFilename returns the timestamped report file name
func ReportFilename(now time.Time) string {
	return "new_listings_" + now.Format("20060102_150405") + ".html"
}

// Subject returns the email subject for a batch
func Subject(c criteria.Criteria, count int) string {
	return fmt.Sprintf("New %s listings (%d found)", label(c), count)
}

// label names the watched cars in headings, "car" when the criteria are unnamed
func label(c criteria.Criteria) string {
	if c.Label == "" {
		return "car"
	}
	return c.Label
}

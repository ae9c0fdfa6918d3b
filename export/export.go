package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"signal-classifier/models"
)

// ContentType of rendered export documents.
const ContentType = "text/html; charset=utf-8"

// Document is a self-contained export artifact.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Error reports a failed export. It never fails the classification itself.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Exporter renders a classification result into a downloadable document.
type Exporter interface {
	Render(meta models.SignalMetadata, response string, generatedAt time.Time) (*Document, error)
}

// Filename returns report_<YYYYMMDD_HHMMSS>.html for t in UTC.
func Filename(t time.Time) string {
	return "report_" + t.UTC().Format("20060102_150405") + ".html"
}

type MetadataRow struct {
	Name  string
	Value string
	Unit  string
}

type reportData struct {
	GeneratedAt string
	Rows        []MetadataRow
	Response    string
	Labels      []models.ClassificationLabel
}

// HTMLExporter renders the fixed HTML report template.
type HTMLExporter struct {
	tmpl *template.Template
}

func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{tmpl: template.Must(template.New("report").Parse(reportTemplate))}
}

func (e *HTMLExporter) Render(meta models.SignalMetadata, response string, generatedAt time.Time) (*Document, error) {
	data := reportData{
		GeneratedAt: generatedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		Rows:        MetadataRows(meta),
		Response:    Sanitize(response),
		Labels:      models.Labels(),
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return nil, &Error{Err: err}
	}

	return &Document{
		Filename:    Filename(generatedAt),
		ContentType: ContentType,
		Body:        buf.Bytes(),
	}, nil
}

// MetadataRows formats the four metadata values for display tables.
func MetadataRows(meta models.SignalMetadata) []MetadataRow {
	return []MetadataRow{
		{"Peak frequency", fmt.Sprintf("%.3f", meta.PeakFrequencyMHz), "MHz"},
		{"Drift rate", fmt.Sprintf("%.3f", meta.DriftRateHzPerS), "Hz/s"},
		{"Signal-to-noise ratio", fmt.Sprintf("%.2f", meta.SNRDB), "dB"},
		{"Pulse width", fmt.Sprintf("%.2f", meta.PulseWidthMS), "ms"},
	}
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Radio Signal Classification Report</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 0.3rem 0.8rem; text-align: left; }
pre { white-space: pre-wrap; background: #f4f4f4; padding: 1rem; }
</style>
</head>
<body>
<h1>Radio Signal Classification Report</h1>
<p>Generated {{.GeneratedAt}}</p>

<h2>Signal metadata</h2>
<table>
<tr><th>Parameter</th><th>Value</th><th>Unit</th></tr>
{{- range .Rows}}
<tr><td>{{.Name}}</td><td>{{.Value}}</td><td>{{.Unit}}</td></tr>
{{- end}}
</table>

<h2>Model classification and insights</h2>
<pre>{{.Response}}</pre>

<h2>Methodology</h2>
<p>The metadata above was rendered into a fixed natural-language prompt and sent to an
external generative model. The model was asked to place the signal into one of the
categories below, give a confidence percentage and suggest three follow-up observations.
No local classification was performed; the text above is the model's answer verbatim,
with markup removed.</p>
<ul>
{{- range .Labels}}
<li>{{.}}</li>
{{- end}}
</ul>

<h2>Limitations</h2>
<p>Model output is unverified and may be wrong. Confirm any candidate with independent
observations before drawing conclusions.</p>
</body>
</html>
`

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Data carries everything a rendered report document needs.
type Data struct {
	Title           string
	ReportType      string
	GeneratedAt     time.Time
	DoctorName      string
	HospitalName    string
	Specialization  string
	PatientContext  string
	Transcript      string
	Summary         string
	Diagnosis       string
	Recommendations string
	Confidence      *float64
	Extra           map[string]interface{}
}

// Renderer turns report data into a standalone HTML document.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"pct": func(v *float64) string {
			if v == nil {
				return ""
			}
			return fmt.Sprintf("%.0f%%", *v*100)
		},
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the HTML document bytes for the given data.
func (r *Renderer) Render(data Data) ([]byte, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	if data.Title == "" {
		data.Title = titleFor(data.ReportType)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func titleFor(reportType string) string {
	switch reportType {
	case "image_analysis":
		return "Medical Image Analysis Report"
	case "voice_examination":
		return "Voice Examination Report"
	case "chat_consultation":
		return "Consultation Summary Report"
	default:
		return "Medical Report"
	}
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #222; }
h1 { border-bottom: 2px solid #2c5aa0; padding-bottom: 8px; }
h2 { color: #2c5aa0; margin-top: 28px; }
.meta { color: #666; font-size: 0.9em; margin-bottom: 24px; }
.section { margin-bottom: 16px; white-space: pre-wrap; }
.disclaimer { margin-top: 40px; padding: 12px; background: #fff3cd; border: 1px solid #ffc107; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
<p>Generated: {{.GeneratedAt.Format "2 January 2006 15:04"}}</p>
{{if .DoctorName}}<p>Physician: {{.DoctorName}}{{if .Specialization}} ({{.Specialization}}){{end}}</p>{{end}}
{{if .HospitalName}}<p>Facility: {{.HospitalName}}</p>{{end}}
</div>
{{if .PatientContext}}<h2>Patient Context</h2><div class="section">{{.PatientContext}}</div>{{end}}
{{if .Transcript}}<h2>Transcript</h2><div class="section">{{.Transcript}}</div>{{end}}
{{if .Summary}}<h2>Summary</h2><div class="section">{{.Summary}}</div>{{end}}
{{if .Diagnosis}}<h2>Assessment</h2><div class="section">{{.Diagnosis}}</div>{{end}}
{{if .Recommendations}}<h2>Recommendations</h2><div class="section">{{.Recommendations}}</div>{{end}}
{{if .Confidence}}<h2>Confidence</h2><div class="section">{{pct .Confidence}}</div>{{end}}
<div class="disclaimer">
This document was generated with AI assistance and is intended for
decision support only. It is not a final diagnosis. All findings must be
reviewed and confirmed by a qualified medical professional.
</div>
</body>
</html>`

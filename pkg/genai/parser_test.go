package genai

import (
	"testing"
)

func TestParseEnrichedReply(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantErr       bool
		wantSummary   string
		wantDiagnosis string
		wantConf      float64
		wantClamped   bool
	}{
		{
			name:          "bare JSON",
			raw:           `{"transcript":"patient reports chest pain","summary":"possible angina","diagnosis":"angina pectoris","recommendations":"ECG","confidence":0.85}`,
			wantSummary:   "possible angina",
			wantDiagnosis: "angina pectoris",
			wantConf:      0.85,
		},
		{
			name:          "fenced JSON",
			raw:           "```json\n{\"summary\":\"clear lungs\",\"diagnosis\":\"no acute findings\",\"confidence\":0.9}\n```",
			wantSummary:   "clear lungs",
			wantDiagnosis: "no acute findings",
			wantConf:      0.9,
		},
		{
			name:        "confidence above range is clamped",
			raw:         `{"summary":"s","diagnosis":"d","confidence":1.4}`,
			wantSummary: "s",
			wantConf:    1.0,
			wantClamped: true,
		},
		{
			name:        "negative confidence is clamped",
			raw:         `{"summary":"s","diagnosis":"d","confidence":-0.2}`,
			wantSummary: "s",
			wantConf:    0.0,
			wantClamped: true,
		},
		{
			name: "section fallback",
			raw: `SUMMARY: Cardiovascular exam reveals potential concerns.
DIAGNOSIS: Possible angina, requires further testing.
RECOMMENDATIONS: ECG, stress test.
CONFIDENCE: 0.85`,
			wantSummary:   "Cardiovascular exam reveals potential concerns.",
			wantDiagnosis: "Possible angina, requires further testing.",
			wantConf:      0.85,
		},
		{
			name: "multi-line section with percent confidence",
			raw: `TRANSCRIPT: Patient reports chest pain
and shortness of breath.
SUMMARY: Concerning presentation.
DIAGNOSIS: Needs workup.
CONFIDENCE: 85%`,
			wantSummary:   "Concerning presentation.",
			wantDiagnosis: "Needs workup.",
			wantConf:      0.85,
		},
		{
			name:    "free prose without markers is rejected",
			raw:     "The image shows nothing remarkable, thank you for asking.",
			wantErr: true,
		},
		{
			name:    "JSON with no medical fields is rejected",
			raw:     `{"answer": 42}`,
			wantErr: true,
		},
		{
			name:    "empty reply is rejected",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := ParseEnrichedReply(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", reply)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantSummary != "" && reply.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", reply.Summary, tt.wantSummary)
			}
			if tt.wantDiagnosis != "" && reply.Diagnosis != tt.wantDiagnosis {
				t.Errorf("Diagnosis = %q, want %q", reply.Diagnosis, tt.wantDiagnosis)
			}
			if reply.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", reply.Confidence, tt.wantConf)
			}
			if reply.ConfidenceClamped != tt.wantClamped {
				t.Errorf("ConfidenceClamped = %v, want %v", reply.ConfidenceClamped, tt.wantClamped)
			}
		})
	}
}

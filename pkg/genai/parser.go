package genai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EnrichedReply is the fixed-schema payload the collaborator is asked to
// return for an examination.
type EnrichedReply struct {
	Transcript      string  `json:"transcript"`
	Summary         string  `json:"summary"`
	Diagnosis       string  `json:"diagnosis"`
	Recommendations string  `json:"recommendations"`
	Confidence      float64 `json:"confidence"`

	// ConfidenceClamped records that the model reported a value outside
	// [0,1] and it was clamped.
	ConfidenceClamped bool `json:"confidence_clamped,omitempty"`
}

var sectionMarkers = []string{"TRANSCRIPT", "SUMMARY", "DIAGNOSIS", "RECOMMENDATIONS", "CONFIDENCE"}

// ParseEnrichedReply turns the collaborator's reply into structured fields.
// The contract asks for strict JSON; models that answer with a prose report
// using the fixed section markers are handled by a fallback extractor. A
// reply matching neither contract is an error, never a best-effort guess.
func ParseEnrichedReply(raw string) (*EnrichedReply, error) {
	cleaned := trimMarkdownFences(raw)

	var reply EnrichedReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err == nil {
		if reply.Summary == "" && reply.Diagnosis == "" {
			return nil, fmt.Errorf("reply JSON carries no summary or diagnosis")
		}
		clampConfidence(&reply)
		return &reply, nil
	}

	parsed, err := parseSections(cleaned)
	if err != nil {
		return nil, fmt.Errorf("reply matches neither the JSON contract nor the section format: %w", err)
	}
	clampConfidence(parsed)
	return parsed, nil
}

func clampConfidence(r *EnrichedReply) {
	if r.Confidence < 0 {
		r.Confidence = 0
		r.ConfidenceClamped = true
	} else if r.Confidence > 1 {
		r.Confidence = 1
		r.ConfidenceClamped = true
	}
}

// trimMarkdownFences strips a ```json ... ``` wrapper some models insist on.
func trimMarkdownFences(raw string) string {
	b := bytes.TrimSpace([]byte(raw))
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return string(bytes.TrimSpace(b))
}

// parseSections extracts the fixed "MARKER: text" sections. Markers must
// start a line; a section runs until the next marker. Summary or diagnosis
// must be present for the reply to count.
func parseSections(text string) (*EnrichedReply, error) {
	sections := make(map[string]string)
	current := ""
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		marker, rest, ok := matchMarker(line)
		if ok {
			flush()
			current = marker
			buf.WriteString(rest)
			buf.WriteString("\n")
			continue
		}
		if current != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	if sections["SUMMARY"] == "" && sections["DIAGNOSIS"] == "" {
		return nil, fmt.Errorf("no SUMMARY or DIAGNOSIS section found")
	}

	reply := &EnrichedReply{
		Transcript:      sections["TRANSCRIPT"],
		Summary:         sections["SUMMARY"],
		Diagnosis:       sections["DIAGNOSIS"],
		Recommendations: sections["RECOMMENDATIONS"],
	}

	if confRaw := sections["CONFIDENCE"]; confRaw != "" {
		// Tolerate trailing prose after the number ("0.85 (moderate)").
		fields := strings.Fields(confRaw)
		conf, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable CONFIDENCE section %q", confRaw)
		}
		if strings.HasSuffix(fields[0], "%") {
			conf = conf / 100
		}
		reply.Confidence = conf
	}

	return reply, nil
}

func matchMarker(line string) (marker, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)
	for _, m := range sectionMarkers {
		if strings.HasPrefix(upper, m+":") {
			return m, strings.TrimSpace(trimmed[len(m)+1:]), true
		}
	}
	return "", "", false
}

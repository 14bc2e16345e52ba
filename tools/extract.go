package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

/************************************************
/**** MARK: EXTRACTION ERROR KINDS ****/
/************************************************/
const EXTRACTION_INCOMPLETE = "incomplete_response"
const EXTRACTION_MALFORMED = "malformed_response"

// ExtractionError reports a failure to pull structured JSON out of model
// output. Incomplete means the text looks truncated and a retry may help;
// malformed means the output is garbage and a retry likely will not.
type ExtractionError struct {
	Kind   string
	Detail string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Retryable reports whether the caller should expect a retry to help.
func (e *ExtractionError) Retryable() bool {
	return e.Kind == EXTRACTION_INCOMPLETE
}

// ExtractJSON pulls the first JSON object out of free-form model output and
// unmarshals it into out. Fenced code-block markers are stripped first, then
// the substring from the first '{' to the last '}' is parsed.
func ExtractJSON(raw string, out any) error {
	text := stripFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 {
		return &ExtractionError{Kind: EXTRACTION_MALFORMED, Detail: "no JSON object found in response"}
	}
	if end == -1 || end < start {
		// There is an opening brace but no closing one: the model stopped
		// mid-object.
		return &ExtractionError{Kind: EXTRACTION_INCOMPLETE, Detail: "JSON object is not terminated"}
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return &ExtractionError{Kind: classifyParseError(err), Detail: err.Error()}
	}
	return nil
}

func stripFences(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func classifyParseError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "unexpected end") || strings.Contains(msg, "unexpected EOF") {
		return EXTRACTION_INCOMPLETE
	}
	return EXTRACTION_MALFORMED
}

package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aaronmarkham/studioproducer/internal/errs"
)

var (
	fencedJSON  = regexp.MustCompile(`(?is)` + "```" + `(?:json)?\s*\n(.*?)\n` + "```")
	bareJSONObj = regexp.MustCompile(`(?s)\{.*\}`)
	escapeFixer = regexp.MustCompile(`\\([^"\\/bfnrtu])`)
)

// ExtractJSON pulls a JSON object out of a model response that may
// wrap it in a markdown code fence, surround it with commentary, or
// (rarely) escape characters JSON doesn't allow. It tries, in order:
// a fenced ```json block, the span from the first '{' to the last '}',
// and finally
// the whole response verbatim.
func ExtractJSON(response string, out any) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return fmt.Errorf("%w: empty model response", errs.ErrInvalidAgentResponse)
	}

	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		candidate := strings.TrimSpace(m[1])
		if err := tryUnmarshal(candidate, out); err == nil {
			return nil
		}
		fixed := escapeFixer.ReplaceAllString(candidate, `\\$1`)
		if err := tryUnmarshal(fixed, out); err == nil {
			return nil
		}
	}

	if m := bareJSONObj.FindString(response); m != "" {
		if err := tryUnmarshal(m, out); err == nil {
			return nil
		}
	}

	if err := tryUnmarshal(response, out); err == nil {
		return nil
	}

	preview := response
	if len(preview) > 300 {
		preview = preview[:300]
	}
	return fmt.Errorf("%w: no valid JSON found in model response (preview: %q)", errs.ErrInvalidAgentResponse, preview)
}

func tryUnmarshal(s string, out any) error {
	return json.Unmarshal([]byte(s), out)
}

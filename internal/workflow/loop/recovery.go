package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Some hosted models occasionally emit a tool call as plain text of the form
// <function=NAME{json}</function>. The service then rejects the generation
// and echoes it back inside the error payload. This shim fishes the call out
// of that payload. It depends on undocumented error text and is fragile.

// failedCallPattern tolerates any separator ("=", quotes, colons, spaces or
// nothing) between the tool name and the opening brace of the arguments.
var failedCallPattern = regexp.MustCompile(`(?s)<function=(\w+)[^{<]*?(\{.*?)</function>`)

// extractFailedCall returns the tool name and arguments of the first
// malformed call embedded in text.
func extractFailedCall(text string) (string, map[string]any, bool) {
	for _, candidate := range []string{text, unescape(text)} {
		for _, m := range failedCallPattern.FindAllStringSubmatch(candidate, -1) {
			if args, ok := parseLooseObject(m[2]); ok {
				return m[1], args, true
			}
		}
	}
	return "", nil, false
}

// parseLooseObject trims whatever sits between the closing brace of the
// arguments and the end tag, then decodes the object.
func parseLooseObject(s string) (map[string]any, bool) {
	end := strings.LastIndex(s, "}")
	if end < 0 {
		return nil, false
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(s[:end+1]), &args); err != nil {
		return nil, false
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, true
}

// unescape undoes one level of JSON string escaping, which is how the
// generation appears when the error body is itself quoted.
func unescape(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\/`, `/`)
	return r.Replace(s)
}

// runRecovered invokes the extracted call directly. Its result is the
// turn's answer and is not written to history.
func (l *Loop) runRecovered(ctx context.Context, name string, args map[string]any) string {
	out, err := l.tools.Invoke(ctx, name, args)
	if err != nil {
		l.log.Warn().Err(err).Str("tool", name).Msg("recovered tool call failed")
		return fmt.Sprintf(recoveredErrorFmt, err)
	}
	return out
}

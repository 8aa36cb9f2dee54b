package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/anu/internal/tool/helper/content"
)

// primaryArg names the argument worth showing for well-known tools.
var primaryArg = map[string]string{
	"calculate":         "expression",
	"open_application":  "app_name",
	"close_application": "app_name",
	"set_volume":        "level",
	"set_reminder":      "task",
	"read_file_content": "filepath",
	"word_count":        "filepath",
	"get_weather":       "city",
	"search_emails":     "query",
	"copy_to_clipboard": "text",
}

// FormatToolCall builds a one-line status description of a tool call from
// its name and JSON arguments.
func FormatToolCall(name, argsJSON string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || len(args) == 0 {
		return name
	}

	key, ok := primaryArg[name]
	if !ok {
		// First argument in name order keeps the output stable.
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		key = keys[0]
	}

	v, ok := args[key]
	if !ok {
		return name
	}
	s := strings.Join(strings.Fields(fmt.Sprint(v)), " ")
	if short, cut := content.Truncate(s, 40); cut {
		s = short + "…"
	}
	return fmt.Sprintf("%s '%s'", name, s)
}

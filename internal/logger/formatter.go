package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// FixedFormatWriter converts zerolog JSON lines into fixed-width columns,
// which is easier to follow when tailing the log on a media center box.
//
//	2026-10-19 21:04:05.000 [INF] [session        ] Turn display off method=dpms-xset
//	2026-10-19 21:04:05.120 [ERR] [executor       ] Running command failed rc=1
type FixedFormatWriter struct {
	w io.Writer
}

// NewFixedFormatWriter creates a new FixedFormatWriter that wraps the given writer.
func NewFixedFormatWriter(w io.Writer) *FixedFormatWriter {
	return &FixedFormatWriter{w: w}
}

var levelTags = map[string]string{
	"trace": "TRC",
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
}

const componentWidth = 15

func (f *FixedFormatWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return f.w.Write(p)
	}

	ts := formatTimestamp(popString(fields, "time"))
	lvl, ok := levelTags[popString(fields, "level")]
	if !ok {
		lvl = "???"
	}
	comp := popString(fields, "component")
	if comp == "" {
		// add-on lines carry the add-on id instead of a component
		comp = popString(fields, "addon")
	}
	if len(comp) > componentWidth {
		comp = comp[:componentWidth]
	}
	msg := popString(fields, "message")
	delete(fields, "caller")

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%-*s] %s", ts, lvl, componentWidth, comp, msg)
	if extra := formatExtra(fields); extra != "" {
		b.WriteByte(' ')
		b.WriteString(extra)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(f.w, b.String())
	// zerolog expects the input length back
	return len(p), err
}

func popString(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// formatTimestamp turns an RFC3339 timestamp into "2006-01-02 15:04:05.000".
func formatTimestamp(ts string) string {
	const width = 23
	if len(ts) < 19 {
		return strings.Repeat(" ", width)
	}

	date, clock := ts[:10], ts[11:]
	if idx := strings.IndexAny(clock, "Z+-"); idx >= 0 {
		clock = clock[:idx]
	}

	secs, frac, _ := strings.Cut(clock, ".")
	switch {
	case len(frac) > 3:
		frac = frac[:3]
	case len(frac) < 3:
		frac += strings.Repeat("0", 3-len(frac))
	}

	out := date + " " + secs + "." + frac
	if len(out) < width {
		out += strings.Repeat(" ", width-len(out))
	}
	return out[:width]
}

// formatExtra renders the remaining fields as sorted key=value pairs.
func formatExtra(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := fmt.Sprintf("%v", fields[k])
		if strings.ContainsAny(s, " \t\n\"") {
			parts = append(parts, fmt.Sprintf("%s=%q", k, s))
		} else {
			parts = append(parts, k+"="+s)
		}
	}
	return strings.Join(parts, " ")
}

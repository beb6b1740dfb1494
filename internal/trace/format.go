package trace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format is the on-disk form of trace events.
type Format uint8

const (
	FormatText   Format = iota // one human-readable line per event
	FormatNDJSON               // newline-delimited JSON
)

func (f Format) String() string {
	if f == FormatNDJSON {
		return "ndjson"
	}
	return "text"
}

// ParseFormat accepts text|ndjson. An empty string picks the format from
// the output path: *.ndjson and *.jsonl are NDJSON, anything else text.
func ParseFormat(s, outputPath string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		if strings.HasSuffix(outputPath, ".ndjson") || strings.HasSuffix(outputPath, ".jsonl") {
			return FormatNDJSON, nil
		}
		return FormatText, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatText, fmt.Errorf("invalid trace format: %q (expected: text|ndjson)", s)
}

// FormatEvent renders ev, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	File     string            `json:"file,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		File:     ev.File,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

var kindMarks = [...]string{
	KindSpanBegin: "\u2192", // →
	KindSpanEnd:   "\u2190", // ←
	KindPoint:     "\u2022", // •
	KindHeartbeat: "\u2661", // ♡
}

// formatText: "#seq scope  → name @file (detail) {k=v, ...}"
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-6d %-6s ", ev.Seq, ev.Scope)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.File != "" {
		sb.WriteString(" @")
		sb.WriteString(ev.File)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + ev.Extra[k]
		}
		sb.WriteString(" {" + strings.Join(pairs, ", ") + "}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

package sinks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/log"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/fatih/color"
)

// ConsoleSink prints human-readable, colourised log lines.
type ConsoleSink struct {
	out      io.Writer
	minLevel types.Level
}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: color.Output, minLevel: types.InfoLevel}
}

// NewConsoleSinkWriter is NewConsoleSink with an explicit destination and threshold.
func NewConsoleSinkWriter(out io.Writer, minLevel types.Level) *ConsoleSink {
	return &ConsoleSink{out: out, minLevel: minLevel}
}

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	if event.Level < c.minLevel {
		return nil
	}

	checkID := getStringField(event.Fields, "check_id")
	msg := event.Message
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(log.LevelString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}

	timestampFmt := color.New(color.FgWhite).SprintFunc()
	label := checkID
	if label == "" {
		label = "run"
	}

	commonPrefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		timestampFmt(timestampStr),
		color.CyanString(label),
	)

	var output string
	switch {
	case msg != "" && errorMsg != "":
		output = fmt.Sprintf("%s%s: %s", commonPrefix, msg, color.RedString(errorMsg))
	case errorMsg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, errorMsg)
	case msg != "":
		output = commonPrefix + msg
		if path := getStringField(event.Fields, "path"); path != "" {
			output += fmt.Sprintf(" (%s)", path)
		}
	default:
		fieldsStr, _ := json.MarshalIndent(event.Fields, "", "  ")
		output = fmt.Sprintf("%s%s", commonPrefix, string(fieldsStr))
	}

	_, err := fmt.Fprintln(c.out, output)
	return err
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

func (c *ConsoleSink) Close() error {
	return nil // Console doesn't need closing
}

package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	fcolor "github.com/fatih/color"
)

// MessageType selects the symbol and colour of a message.
type MessageType int

const (
	// ErrorType is printed in red with ✗.
	ErrorType MessageType = iota
	// WarningType is printed in yellow with ⚠.
	WarningType
	// ActivityType is printed uncoloured with ►.
	ActivityType
	// SuccessType is printed in green with ✔.
	SuccessType
	// InfoType is printed in blue with ℹ.
	InfoType
	// TitleType is printed bold behind an emoji.
	TitleType
	// PromptType is printed in cyan with ? and no trailing newline.
	PromptType
)

// Message is a single notification.
type Message struct {
	Type    MessageType
	Content string
	Args    []any
	// Timer adds a timing block after success messages.
	Timer timer.Timer
	// Emoji replaces the default title emoji.
	Emoji string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

type style struct {
	symbol string
	color  *fcolor.Color
}

func styleFor(msgType MessageType) style {
	switch msgType {
	case ErrorType:
		return style{symbol: "✗ ", color: fcolor.New(fcolor.FgRed)}
	case WarningType:
		return style{symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)}
	case ActivityType:
		return style{symbol: "► ", color: fcolor.New(fcolor.Reset)}
	case SuccessType:
		return style{symbol: "✔ ", color: fcolor.New(fcolor.FgGreen)}
	case InfoType:
		return style{symbol: "ℹ ", color: fcolor.New(fcolor.FgBlue)}
	case PromptType:
		return style{symbol: "? ", color: fcolor.New(fcolor.FgCyan)}
	case TitleType:
		return style{color: fcolor.New(fcolor.Reset, fcolor.Bold)}
	default:
		return style{color: fcolor.New(fcolor.Reset)}
	}
}

// WriteMessage renders msg to its writer. Write errors are reported on stderr
// and otherwise ignored.
func WriteMessage(msg Message) {
	writer := msg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(content, msg.Args...)
	}

	st := styleFor(msg.Type)

	var err error

	switch msg.Type {
	case TitleType:
		emoji := msg.Emoji
		if emoji == "" {
			emoji = "🐟"
		}

		_, err = st.color.Fprintf(writer, "%s %s\n", emoji, content)
	case PromptType:
		_, err = st.color.Fprintf(writer, "%s%s ", st.symbol, alignContinuation(content, st.symbol))
	default:
		_, err = st.color.Fprintf(writer, "%s%s\n", st.symbol, alignContinuation(content, st.symbol))
	}

	reportWriteError(err)

	if msg.Type == SuccessType && msg.Timer != nil {
		total, stage := msg.Timer.GetTiming()

		_, err = st.color.Fprintf(writer, "⏲ current: %s\n  total:  %s\n", stage, total)
		reportWriteError(err)
	}
}

// Errorf writes an error message.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning message.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Activityf writes a progress message.
func Activityf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: writer})
}

// Successf writes a success message.
func Successf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: writer})
}

// SuccessWithTimerf writes a success message followed by the timer's readings.
func SuccessWithTimerf(writer io.Writer, tmr timer.Timer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Timer: tmr, Writer: writer})
}

// Infof writes an informational message.
func Infof(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: writer})
}

// Titlef writes a stage title.
func Titlef(writer io.Writer, emoji, format string, args ...any) {
	WriteMessage(Message{Type: TitleType, Content: format, Args: args, Emoji: emoji, Writer: writer})
}

// Promptf writes a question and leaves the cursor on the same line.
func Promptf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: PromptType, Content: format, Args: args, Writer: writer})
}

func reportWriteError(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "notify: failed to print message: %v\n", err)
	}
}

// alignContinuation indents every non-empty line after the first by the width of symbol.
func alignContinuation(content, symbol string) string {
	if symbol == "" || !strings.Contains(content, "\n") {
		return content
	}

	pad := strings.Repeat(" ", len([]rune(symbol)))
	lines := strings.Split(content, "\n")

	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}

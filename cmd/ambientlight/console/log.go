package console

import (
	"fmt"
	"io"
	"os"
)

const (
	PictoBulb  = "💡"
	PictoBell  = "🔔"
	PictoSleep = "💤"
	PictoStop  = "🚫"
)

var (
	writer    io.Writer = os.Stdout
	errWriter io.Writer = os.Stderr
)

// SetOutput redirects regular and error output, e.g. to buffers in tests.
func SetOutput(w, errw io.Writer) {
	writer = w
	errWriter = errw
}

// Writer returns the regular output writer for encoders and tables.
func Writer() io.Writer {
	return writer
}

func Errorf(msg string, args ...interface{}) {
	line(errWriter, Red("ERROR")+":", msg, args)
}

func Warnf(msg string, args ...interface{}) {
	line(errWriter, Yellow("WARN")+":", msg, args)
}

// PInfof prints a result line prefixed with a pictogram.
func PInfof(picto, msg string, args ...interface{}) {
	line(writer, picto, msg, args)
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, msg, args...)
}

func line(w io.Writer, prefix, msg string, args []interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(msg, args...))
}

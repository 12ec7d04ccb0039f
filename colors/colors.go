package colors

import (
	"fmt"
	"net/http"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
)

// Status renders an HTTP status code green for success, yellow for
// client errors and red for server errors.
func Status(code int) string {
	label := fmt.Sprint(code)

	switch {
	case code >= http.StatusInternalServerError:
		return Red(label)
	case code >= http.StatusBadRequest:
		return Yellow(label)
	default:
		return Green(label)
	}
}

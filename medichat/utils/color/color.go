// medichat/utils/color/color.go
package color

import (
	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	thinkColor   = color.New(color.FgHiBlack, color.Italic)
	errorColor   = color.New(color.FgRed, color.Bold)
	botRespColor = color.New(color.FgHiYellow, color.Bold)
)

func ColorPrompt(s string) string {
	return promptColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorThinking(s string) string {
	return thinkColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

func ColorBotResponse(s string) string {
	return botRespColor.Sprint(s)
}

// Disable turns colouring off, e.g. when stdout is not a terminal.
func Disable() {
	color.NoColor = true
}

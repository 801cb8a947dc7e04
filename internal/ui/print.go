package ui

import (
	"fmt"
	"os"
	"strings"
)

// KeyWidth pads the key column of Kv lines.
const KeyWidth = 14

// Puts prints a line to stdout.
func Puts(s string) {
	fmt.Fprintln(os.Stdout, s)
}

// Blank prints an empty line.
func Blank() {
	fmt.Fprintln(os.Stdout)
}

// Section opens a command's output block: a blank line, the icon and title,
// and another blank line.
func Section(icon, title string) {
	Blank()
	Puts(Title.Render("  " + icon + " " + title))
	Blank()
}

// Note prints an indented muted line.
func Note(msg string) {
	Puts(Muted.Render("  " + msg))
}

// Okf prints a success line.
func Okf(format string, args ...any) {
	Puts(Success.Render(IconOk + fmt.Sprintf(format, args...)))
}

// Warnf prints a warning line.
func Warnf(format string, args ...any) {
	Puts(Warning.Render(IconWarn + fmt.Sprintf(format, args...)))
}

// Err prints an error line to stderr.
func Err(msg string) {
	fmt.Fprintln(os.Stderr, Error.Bold(true).Render(IconError+msg))
}

// Header prints an underlined heading for listings such as config keys.
func Header(s string) {
	Blank()
	Puts(Title.Render(s))
	Puts(Muted.Render(strings.Repeat("─", len([]rune(s))+2)))
}

// Tip prints a hint after a blank line. cmd is highlighted.
func Tip(text, cmd string) {
	Blank()
	Puts(Muted.Render("  tip: "+text+" ") + Accent.Render(cmd))
}

// Kv prints a padded key and its value.
func Kv(key, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-*s", KeyWidth, key))
	Puts(k + " " + ValueStyle.Render(value))
}

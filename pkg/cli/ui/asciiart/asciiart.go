// Package asciiart renders bacboot's banner and introduction text.
package asciiart

import (
	"fmt"
	"io"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 72

const banner = `  _                _                 _
 | |__   __ _  ___| |__   ___   ___ | |_
 | '_ \ / _' |/ __| '_ \ / _ \ / _ \| __|
 | |_) | (_| | (__| |_) | (_) | (_) | |_
 |_.__/ \__,_|\___|_.__/ \___/ \___/ \__|`

const intro = "bacboot installs Bacalhau by fetching the bacalhau-playbook Ansible " +
	"bundle and running it against this machine or an inventory of remote hosts. " +
	"The bundle is kept in a local working copy that is checked for local " +
	"modifications and updated before every run."

const about = "bacboot keeps one working copy of the playbook bundle. A copy with " +
	"local modifications is never used or changed; inspect it with git and " +
	"clean it up yourself. A copy that is behind its upstream is updated, or " +
	"used as-is when you choose to. Version pins are written to the bundle's " +
	"overrides file; choosing 'latest' resets any earlier pin."

// Banner returns the banner in the given colour attribute.
func Banner() string {
	return fcolor.New(fcolor.FgCyan, fcolor.Bold).Sprint(banner)
}

// Intro returns the introduction wrapped to width.
func Intro(width uint) string {
	return wrap(intro, width)
}

// About returns the longer description shown by the About menu entry.
func About(width uint) string {
	return wrap(about, width)
}

// WriteBanner writes the banner, the version line and the wrapped introduction.
func WriteBanner(out io.Writer, version string, width uint) {
	_, _ = fmt.Fprintln(out, Banner())
	_, _ = fmt.Fprintf(out, "%s\n\n%s\n\n", strings.TrimSpace("bacboot "+version), Intro(width))
}

func wrap(text string, width uint) string {
	if width == 0 {
		width = DefaultWidth
	}

	return wordwrap.WrapString(text, width)
}

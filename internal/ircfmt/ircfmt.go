// Package ircfmt renders mIRC formatting control codes.
package ircfmt

const (
	controlBold  = "\x02"
	controlColor = "\x03"
)

// Color is a two-digit mIRC colour code.
type Color string

const (
	White      Color = "00"
	Black      Color = "01"
	Blue       Color = "02"
	Green      Color = "03"
	Red        Color = "04"
	Brown      Color = "05"
	Purple     Color = "06"
	Orange     Color = "07"
	Yellow     Color = "08"
	LightGreen Color = "09"
	Teal       Color = "10"
	LightCyan  Color = "11"
	LightBlue  Color = "12"
	Pink       Color = "13"
	Grey       Color = "14"
	LightGrey  Color = "15"
)

var colorNames = map[Color]string{
	White:      "WHITE",
	Black:      "BLACK",
	Blue:       "BLUE",
	Green:      "GREEN",
	Red:        "RED",
	Brown:      "BROWN",
	Purple:     "PURPLE",
	Orange:     "ORANGE",
	Yellow:     "YELLOW",
	LightGreen: "LIGHT_GREEN",
	Teal:       "TEAL",
	LightCyan:  "LIGHT_CYAN",
	LightBlue:  "LIGHT_BLUE",
	Pink:       "PINK",
	Grey:       "GREY",
	LightGrey:  "LIGHT_GREY",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return string(c)
}

// Bold wraps text in bold toggles.
func Bold(text string) string {
	return controlBold + text + controlBold
}

// Colorize sets the foreground colour of text and resets it afterwards.
func Colorize(text string, fg Color) string {
	if fg == "" {
		return text
	}
	return controlColor + string(fg) + text + controlColor
}

// Strip removes bold and colour codes, which is handy for logs and the
// status API.
func Strip(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case controlBold[0]:
			continue
		case controlColor[0]:
			// up to two foreground digits, optionally ",bg" with up to two more
			j := i + 1
			j = skipDigits(text, j, 2)
			if j < len(text) && text[j] == ',' && j+1 < len(text) && isDigit(text[j+1]) {
				j = skipDigits(text, j+1, 2)
			}
			i = j - 1
			continue
		}
		out = append(out, text[i])
	}
	return string(out)
}

func skipDigits(s string, from, max int) int {
	j := from
	for j < len(s) && j-from < max && isDigit(s[j]) {
		j++
	}
	return j
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

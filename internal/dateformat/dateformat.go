// Package dateformat renders date-times with Unicode/date-fns style patterns
// such as "dd 'of' MMMM, yyyy '-' hh'h'mm".
//
// Supported fields: d dd M MM MMM MMMM yy yyyy h hh H HH m mm s ss a E EEE EEEE.
// Text in single quotes is literal; '' is a quote. Unknown letters are copied.
package dateformat

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultPattern is the meetup list date pattern.
const DefaultPattern = "dd 'of' MMMM, yyyy '-' hh'h'mm"

// DefaultLocale is used when a requested locale is not supported.
const DefaultLocale = "en-US"

type names struct {
	months [12]string
	days   [7]string
	am, pm string
}

var english = names{
	months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	days: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	am:   "AM",
	pm:   "PM",
}

var portuguese = names{
	months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	days: [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
	am:   "AM",
	pm:   "PM",
}

var (
	supported = []language.Tag{language.AmericanEnglish, language.BrazilianPortuguese}
	tables    = []names{english, portuguese}
	matcher   = language.NewMatcher(supported)
)

// lookup returns the name table for a BCP 47 locale, falling back to English.
func lookup(locale string) names {
	tag, err := language.Parse(locale)
	if err != nil {
		return english
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return english
	}
	return tables[idx]
}

// Supported reports whether locale matches one of the built-in name tables.
func Supported(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(tag)
	return conf != language.No
}

// Format renders t in its own location.
func Format(t time.Time, pattern, locale string) string {
	n := lookup(locale)
	var b strings.Builder
	r := []rune(pattern)
	for i := 0; i < len(r); {
		c := r[i]
		if c == '\'' {
			i = literal(r, i, &b)
			continue
		}
		if !isLetter(c) {
			b.WriteRune(c)
			i++
			continue
		}
		j := i
		for j < len(r) && r[j] == c {
			j++
		}
		field(&b, t, c, j-i, n)
		i = j
	}
	return b.String()
}

// Local renders t converted to the local time zone.
func Local(t time.Time, pattern, locale string) string {
	return Format(t.Local(), pattern, locale)
}

// literal copies a quoted section starting at r[i] == '\'' and returns the
// index after the closing quote.
func literal(r []rune, i int, b *strings.Builder) int {
	if i+1 < len(r) && r[i+1] == '\'' {
		b.WriteRune('\'')
		return i + 2
	}
	i++
	for i < len(r) {
		if r[i] == '\'' {
			if i+1 < len(r) && r[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			return i + 1
		}
		b.WriteRune(r[i])
		i++
	}
	return i
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func field(b *strings.Builder, t time.Time, c rune, width int, n names) {
	switch c {
	case 'd':
		num(b, t.Day(), width)
	case 'M':
		switch {
		case width >= 4:
			b.WriteString(n.months[t.Month()-1])
		case width == 3:
			b.WriteString(abbrev(n.months[t.Month()-1]))
		default:
			num(b, int(t.Month()), width)
		}
	case 'y':
		if width == 2 {
			num(b, t.Year()%100, 2)
		} else {
			num(b, t.Year(), width)
		}
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		num(b, h, width)
	case 'H':
		num(b, t.Hour(), width)
	case 'm':
		num(b, t.Minute(), width)
	case 's':
		num(b, t.Second(), width)
	case 'a':
		if t.Hour() < 12 {
			b.WriteString(n.am)
		} else {
			b.WriteString(n.pm)
		}
	case 'E':
		day := n.days[t.Weekday()]
		if width >= 4 {
			b.WriteString(day)
		} else {
			b.WriteString(abbrev(day))
		}
	default:
		b.WriteString(strings.Repeat(string(c), width))
	}
}

func num(b *strings.Builder, v, width int) {
	s := strconv.Itoa(v)
	if pad := width - len(s); pad > 0 {
		b.WriteString(strings.Repeat("0", pad))
	}
	b.WriteString(s)
}

func abbrev(s string) string {
	r := []rune(s)
	if len(r) <= 3 {
		return s
	}
	return string(r[:3])
}

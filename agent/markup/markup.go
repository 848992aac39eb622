// Package markup implements the inline widget grammar the chat front end
// renders:
//
//	widget := "{{" tag ("|" arg)* "}}"
//
// Inside an argument, `\|`, `\}` and `\\` stand for the literal characters.
package markup

import (
	"strconv"
	"strings"
)

const (
	TagScore     = "score"
	TagSpin      = "spin"
	TagMeeting   = "meeting"
	TagRanking   = "ranking"
	TagChallenge = "challenge"
)

type tagSpec struct {
	min, max int
	// argument positions that must parse as numbers
	numeric []int
}

var tags = map[string]tagSpec{
	TagScore:     {min: 2, max: 2, numeric: []int{1}},
	TagSpin:      {min: 4, max: 4, numeric: []int{0, 1, 2, 3}},
	TagMeeting:   {min: 3, max: 4},
	TagRanking:   {min: 3, max: 3, numeric: []int{0}},
	TagChallenge: {min: 2, max: 2},
}

// Tags lists the known widget tags.
func Tags() []string {
	return []string{TagScore, TagSpin, TagMeeting, TagRanking, TagChallenge}
}

type Widget struct {
	Tag  string
	Args []string
}

// Valid checks the tag is known and the arguments fit its arity.
func (w Widget) Valid() bool {
	spec, ok := tags[w.Tag]
	if !ok || len(w.Args) < spec.min || len(w.Args) > spec.max {
		return false
	}
	for _, i := range spec.numeric {
		if _, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(w.Args[i]), ",", ".", 1), 64); err != nil {
			return false
		}
	}
	return true
}

func (w Widget) String() string {
	return Format(w.Tag, w.Args...)
}

// Format builds a widget token, escaping the arguments.
func Format(tag string, args ...string) string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(tag)
	for _, a := range args {
		b.WriteByte('|')
		b.WriteString(escape(a))
	}
	b.WriteString("}}")
	return b.String()
}

// escape prefixes '|' and '}' with a backslash. A literal backslash is
// doubled only where the parser would read it as an escape, or when it ends
// the arg.
func escape(s string) string {
	if !strings.ContainsAny(s, `\|}`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '|', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\\':
			if i+1 == len(s) || strings.IndexByte(`\|}`, s[i+1]) >= 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Segment is either plain text or one widget, in document order.
type Segment struct {
	Text   string
	Widget *Widget
}

// Parse splits text into plain and widget segments. An opening "{{" that is
// never closed, or that is not followed by a tag name, stays plain text.
func Parse(text string) []Segment {
	var (
		out   []Segment
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "{{") {
			if w, n, ok := scanWidget(text[i:]); ok {
				flush()
				out = append(out, Segment{Text: text[i : i+n], Widget: &w})
				i += n
				continue
			}
		}
		plain.WriteByte(text[i])
		i++
	}
	flush()
	return out
}

// scanWidget reads one widget at the start of s and returns its byte length.
func scanWidget(s string) (Widget, int, bool) {
	i := 2
	start := i
	for i < len(s) && isTagByte(s[i]) {
		i++
	}
	if i == start {
		return Widget{}, 0, false
	}
	w := Widget{Tag: s[start:i]}

	for {
		switch {
		case strings.HasPrefix(s[i:], "}}"):
			return w, i + 2, true
		case i < len(s) && s[i] == '|':
			arg, n, ok := scanArg(s[i+1:])
			if !ok {
				return Widget{}, 0, false
			}
			w.Args = append(w.Args, arg)
			i += 1 + n
		default:
			return Widget{}, 0, false
		}
	}
}

// scanArg reads up to the next unescaped "|" or "}}" without consuming it.
func scanArg(s string) (string, int, bool) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == '|' || s[i+1] == '}' || s[i+1] == '\\'):
			b.WriteByte(s[i+1])
			i += 2
		case c == '|':
			return b.String(), i, true
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			return b.String(), i, true
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, false
}

func isTagByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-'
}

// Normalize rewrites every well formed widget in canonical escaped form and
// turns widgets the front end would reject into plain text.
func Normalize(text string) string {
	segments := Parse(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range segments {
		switch {
		case seg.Widget == nil:
			b.WriteString(seg.Text)
		case seg.Widget.Valid():
			b.WriteString(seg.Widget.String())
		default:
			b.WriteString(demote(*seg.Widget))
		}
	}
	return b.String()
}

func demote(w Widget) string {
	parts := make([]string, 0, len(w.Args))
	for _, a := range w.Args {
		if a = strings.TrimSpace(a); a != "" {
			parts = append(parts, a)
		}
	}
	if len(parts) == 0 {
		return w.Tag
	}
	return strings.Join(parts, " ")
}

// Widgets returns only the widget segments of text.
func Widgets(text string) []Widget {
	var out []Widget
	for _, seg := range Parse(text) {
		if seg.Widget != nil {
			out = append(out, *seg.Widget)
		}
	}
	return out
}

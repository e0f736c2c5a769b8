package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ResponseFormatError reports AI output that is still not valid JSON after repair.
// Line and Column are 1-based and point at the offending character.
type ResponseFormatError struct {
	Line   int
	Column int
	Err    error
}

func (e *ResponseFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("AI返回的行程格式无法解析 (line %d, column %d): %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("AI返回的行程格式无法解析: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

type scanState int

const (
	stateNormal scanState = iota
	stateInString
	stateEscaped
)

// next advances the string-literal tracker by one rune.
func (s scanState) next(r rune) scanState {
	switch s {
	case stateNormal:
		if r == '"' {
			return stateInString
		}
	case stateInString:
		switch r {
		case '\\':
			return stateEscaped
		case '"':
			return stateNormal
		}
	case stateEscaped:
		return stateInString
	}
	return s
}

var (
	brokenClock      = regexp.MustCompile(`(\d{1,2}):"(\d{2})`)
	brokenClockRange = regexp.MustCompile(`(\d{1,2}):(\d{2})-\s*(\d{1,2}):"(\d{2})`)
)

// RepairJSON makes a best effort to turn model output into parseable JSON.
// Each stage only runs while the text is still invalid, so valid input comes back unchanged
// apart from surrounding code fences and whitespace.
func RepairJSON(raw string) string {
	s := stripCodeFences(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))
	if json.Valid([]byte(s)) {
		return s
	}

	s = normalizeQuotes(s)
	s = brokenClockRange.ReplaceAllString(s, `$1:$2-$3:$4"`)
	s = brokenClock.ReplaceAllString(s, `$1:$2"`)
	if json.Valid([]byte(s)) {
		return s
	}

	s = fixQuotesAndCommas(s)
	if json.Valid([]byte(s)) {
		return s
	}

	return balanceStructure(s)
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl > 0 {
			s = s[nl+1:]
		} else {
			s = s[3:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = s[:strings.LastIndex(s, "```")]
	}
	return strings.TrimSpace(s)
}

// normalizeQuotes rewrites typographic punctuation and single-quoted tokens. Outside strings
// curly double quotes and single quotes open a string that the next matching quote closes, and
// decorative CJK brackets are dropped. Inside a string opened by an ASCII quote, curly double
// quotes are escaped and curly single quotes become apostrophes.
func normalizeQuotes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	state := stateNormal
	var closer rune

	for _, r := range s {
		switch state {
		case stateInString:
			switch {
			case closer != 0 && closesQuote(closer, r):
				sb.WriteByte('"')
				state, closer = stateNormal, 0
				continue
			case r == '“' || r == '”':
				sb.WriteString(`\"`)
				continue
			case r == '"' && closer == '\'':
				sb.WriteString(`\"`)
				continue
			case r == '‘' || r == '’':
				sb.WriteByte('\'')
				continue
			}
		case stateNormal:
			switch r {
			case '“', '”':
				sb.WriteByte('"')
				state, closer = stateInString, '”'
				continue
			case '\'', '‘', '’':
				sb.WriteByte('"')
				state, closer = stateInString, '\''
				continue
			case '《', '》', '「', '」', '『', '』':
				continue
			}
		}
		sb.WriteRune(r)
		state = state.next(r)
		if state == stateNormal {
			closer = 0
		}
	}
	return sb.String()
}

func closesQuote(closer, r rune) bool {
	if closer == '\'' {
		return r == '\'' || r == '‘' || r == '’'
	}
	return r == '“' || r == '”'
}

// fixQuotesAndCommas escapes ASCII quotes that cannot end the string they sit in and inserts the
// comma missing between two adjacent values. Text outside strings is otherwise left alone.
func fixQuotesAndCommas(s string) string {
	out := make([]byte, 0, len(s)+16)
	state := stateNormal
	var last byte
	lastAt := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateEscaped:
			state = stateInString
		case stateInString:
			switch c {
			case '\\':
				state = stateEscaped
			case '"':
				if !closesString(s, i) {
					out = append(out, '\\', '"')
					continue
				}
				state = stateNormal
				last, lastAt = c, len(out)
			}
		case stateNormal:
			if (c == '"' || c == '{' || c == '[') && lastAt >= 0 && endsValue(last) {
				out = slices.Insert(out, lastAt+1, ',')
				last = ','
			}
			switch {
			case c == '"':
				state = stateInString
			case !isJSONSpace(c):
				last, lastAt = c, len(out)
			}
		}
		out = append(out, c)
	}
	return string(out)
}

// closesString reports whether the quote at s[i] ends its string: it must be followed by a
// delimiter, a line break or the end of input. A following value start counts only after a space,
// which is the missing-comma shape.
func closesString(s string, i int) bool {
	j := i + 1
	newline := false
	for j < len(s) && isJSONSpace(s[j]) {
		if s[j] == '\n' || s[j] == '\r' {
			newline = true
		}
		j++
	}
	if j == len(s) || newline {
		return true
	}
	switch s[j] {
	case ':', ',', '}', ']':
		return true
	case '"', '{', '[':
		return j > i+1
	}
	return false
}

func endsValue(c byte) bool {
	switch {
	case c == '"', c == '}', c == ']':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == 'e', c == 'l':
		return true
	}
	return false
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// balanceStructure closes unterminated strings and brackets. Stray closers are dropped and a
// mismatched closer is replaced by the expected one.
func balanceStructure(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)
	var stack []rune
	state := stateNormal

	for i := 0; i < len(in); i++ {
		r := in[i]
		if state != stateNormal {
			out = append(out, r)
			state = state.next(r)
			continue
		}

		switch r {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			expected := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if r != expected {
				out = append(out, expected)
				i--
				continue
			}
		}
		out = append(out, r)
		state = state.next(r)
	}

	switch state {
	case stateEscaped:
		out = append(out[:len(out)-1], '"')
	case stateInString:
		out = append(out, '"')
	}
	for j := len(stack) - 1; j >= 0; j-- {
		out = append(out, stack[j])
	}
	return string(out)
}

// formatError locates a decode failure in the repaired text.
func formatError(data []byte, err error) *ResponseFormatError {
	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return &ResponseFormatError{Err: err}
	}
	line, col := lineColumn(data, offset)
	return &ResponseFormatError{Line: line, Column: col, Err: err}
}

// lineColumn converts the decoder's byte offset (just past the bad byte) into a position.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset > 0 {
		offset--
	}
	prefix := data[:offset]
	line := 1 + strings.Count(string(prefix), "\n")
	lineStart := strings.LastIndexByte(string(prefix), '\n') + 1
	return line, utf8.RuneCount(prefix[lineStart:]) + 1
}

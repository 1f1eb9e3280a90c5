package blockrec

import (
	"bufio"
	"io"
	"strings"
)

// LineStream reads numbered lines from r. Both LF and CRLF endings are
// accepted. Continuation lines are not unfolded: the grammar allows leading
// whitespace on every line, so a line starting with a space is just another
// line.
type LineStream struct {
	r io.Reader
	b *bufio.Reader
	n int
}

// NewLineStream wraps r in a buffered reader.
func NewLineStream(r io.Reader) *LineStream {
	return &LineStream{
		r: r,
		b: bufio.NewReader(r),
	}
}

// ReadLine returns the next line without its terminator. At end of input it
// returns the final unterminated line, if any, together with io.EOF.
func (ls *LineStream) ReadLine() (*ContentLine, error) {
	b, err := ls.b.ReadString('\n')
	if len(b) == 0 && err != nil {
		return nil, err
	}
	ls.n++
	b = strings.TrimSuffix(b, "\n")
	b = strings.TrimSuffix(b, "\r")
	return &ContentLine{Text: b, Number: ls.n}, err
}

// ReadAll drains the stream.
func (ls *LineStream) ReadAll() ([]ContentLine, error) {
	var lines []ContentLine
	for {
		l, err := ls.ReadLine()
		if l != nil {
			lines = append(lines, *l)
		}
		switch err {
		case nil:
		case io.EOF:
			return lines, nil
		default:
			return lines, err
		}
	}
}

// SplitLines numbers the lines of an in-memory string.
func SplitLines(s string) []ContentLine {
	raw := strings.Split(s, "\n")
	lines := make([]ContentLine, len(raw))
	for i, t := range raw {
		lines[i] = ContentLine{Text: strings.TrimSuffix(t, "\r"), Number: i + 1}
	}
	return lines
}

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/itchyny/timefmt-go"
	"github.com/vjeantet/jodaTime"
)

// DateFormatter renders date columns.
type DateFormatter interface {
	Format(t time.Time) string
}

// CompileDateFormat compiles a date pattern once. Patterns containing '%'
// use strftime directives; anything else uses pattern letters such as
// "yyyy-MM-dd HH:mm:ss.SSS". An empty pattern yields a nil formatter.
func CompileDateFormat(pattern string) (DateFormatter, error) {
	if pattern == "" {
		return nil, nil
	}
	if strings.ContainsRune(pattern, '%') {
		return strftimeFormat(pattern), nil
	}
	if err := checkLetterPattern(pattern); err != nil {
		return nil, core.WrapError(core.ErrIllegalValue, err, "invalid dateFormat %q", pattern)
	}
	return letterFormat(pattern), nil
}

type strftimeFormat string

func (f strftimeFormat) Format(t time.Time) string {
	return timefmt.Format(t, string(f))
}

type letterFormat string

func (f letterFormat) Format(t time.Time) string {
	return jodaTime.Format(string(f), t)
}

// patternLetters are the letters the formatter understands. Any other ASCII
// letter must be quoted.
const patternLetters = "GCYxweEyDMdaKhHkmsSzZ"

// checkLetterPattern rejects unknown pattern letters and unterminated quotes.
// A doubled quote is a literal quote, inside or outside quoted text.
func checkLetterPattern(pattern string) error {
	quoted := false
	start := 0
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				i++
				continue
			}
			if !quoted {
				start = i
			}
			quoted = !quoted
		case quoted:
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			if !strings.ContainsRune(patternLetters, rune(c)) {
				return fmt.Errorf("illegal pattern character %q", c)
			}
		}
	}
	if quoted {
		return fmt.Errorf("unterminated quote at offset %d", start)
	}
	return nil
}

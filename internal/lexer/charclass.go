package lexer

// charClass is a set of flags describing the lexical role of a byte.
type charClass uint16

const (
	classSpace      charClass = 1 << iota // [ \t\n\r\f\v]
	classNewline                          // [\n\r]
	classOpChar                           // op_chars of scan.l
	classDigit                            // [0-9]
	classHexDigit                         // [0-9A-Fa-f]
	classOctDigit                         // [0-7]
	classBinDigit                         // [01]
	classIdentStart                       // [A-Za-z\200-\377_]
	classIdentCont                        // [A-Za-z\200-\377_0-9\$]
	classDolqCont                         // [A-Za-z\200-\377_0-9]
)

var charClasses [256]charClass

func init() {
	for _, c := range []byte(" \t\n\r\f\v") {
		charClasses[c] |= classSpace
	}
	charClasses['\n'] |= classNewline
	charClasses['\r'] |= classNewline

	// op_chars [\~\!\@\#\^\&\|\`\?\+\-\*\/\%\<\>\=]  scan.l line 363.
	for _, c := range []byte("~!@#^&|`?+-*/%<>=") {
		charClasses[c] |= classOpChar
	}

	for c := '0'; c <= '9'; c++ {
		charClasses[c] |= classDigit | classHexDigit | classIdentCont | classDolqCont
		if c <= '7' {
			charClasses[c] |= classOctDigit
		}
		if c <= '1' {
			charClasses[c] |= classBinDigit
		}
	}
	for c := 'a'; c <= 'f'; c++ {
		charClasses[c] |= classHexDigit
		charClasses[c-'a'+'A'] |= classHexDigit
	}

	letter := classIdentStart | classIdentCont | classDolqCont
	for c := 'a'; c <= 'z'; c++ {
		charClasses[c] |= letter
		charClasses[c-'a'+'A'] |= letter
	}
	charClasses['_'] |= letter
	for c := 0x80; c <= 0xFF; c++ {
		charClasses[c] |= letter
	}
	charClasses['$'] |= classIdentCont
}

func is(c byte, class charClass) bool { return charClasses[c]&class != 0 }

func isSpace(c byte) bool      { return is(c, classSpace) }
func isOpChar(c byte) bool     { return is(c, classOpChar) }
func isDigit(c byte) bool      { return is(c, classDigit) }
func isHexDigit(c byte) bool   { return is(c, classHexDigit) }
func isOctDigit(c byte) bool   { return is(c, classOctDigit) }
func isBinDigit(c byte) bool   { return is(c, classBinDigit) }
func isIdentStart(c byte) bool { return is(c, classIdentStart) }
func isIdentCont(c byte) bool  { return is(c, classIdentCont) }
func isDolqCont(c byte) bool   { return is(c, classDolqCont) }

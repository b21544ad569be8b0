package syslog

// Priority bit layout: 3-bit severity, facility in the bits above
// (from sys/syslog.h).
const (
	SeverityMask = 0x07
	FacilityMask = 0x03f8

	FacilityKern = 0 << 3
	FacilityUser = 1 << 3

	SeverityEmerg   = 0
	SeverityAlert   = 1
	SeverityCrit    = 2
	SeverityErr     = 3
	SeverityWarning = 4
	SeverityNotice  = 5
	SeverityInfo    = 6
	SeverityDebug   = 7
)

// DefaultPriority is what a datagram without a <NNN> header gets: user.info.
const DefaultPriority = FacilityUser | SeverityInfo

var facilityNames = []string{
	"kern", "user", "mail", "daemon", "auth", "syslog", "lpr", "news",
	"uucp", "cron", "authpriv", "ftp", "ntp", "audit", "alert", "clock",
	"local0", "local1", "local2", "local3", "local4", "local5", "local6", "local7",
}

var severityNames = []string{
	"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug",
}

// FacilityName returns the conventional name for a facility number, or
// "unknown" if it is out of range.
func FacilityName(facility int) string {
	if facility < 0 || facility >= len(facilityNames) {
		return "unknown"
	}
	return facilityNames[facility]
}

// SeverityName returns the conventional name for a severity number.
func SeverityName(severity int) string {
	if severity < 0 || severity >= len(severityNames) {
		return "unknown"
	}
	return severityNames[severity]
}

// FixupFacility substitutes the user facility when the facility bits are zero,
// preserving the severity. Everything else passes through unchanged.
func FixupFacility(priority int) int {
	if priority&FacilityMask == 0 {
		return priority&SeverityMask | FacilityUser
	}
	return priority
}

// ParsePriority strips a leading "<NNN>" priority header. It returns the
// parsed priority and the remainder of the buffer. If the header is absent or
// malformed (no digits, more than 3 digits, missing '>'), ok is false and the
// buffer is returned untouched.
func ParsePriority(buf []byte) (priority int, rest []byte, ok bool) {
	if len(buf) < 3 || buf[0] != '<' {
		return 0, buf, false
	}

	p := 0
	i := 1
	for ; i < len(buf) && buf[i] != '>'; i++ {
		if buf[i] < '0' || buf[i] > '9' || i > 3 {
			return 0, buf, false
		}
		p = p*10 + int(buf[i]-'0')
	}
	if i == 1 || i >= len(buf) {
		return 0, buf, false
	}

	return p, buf[i+1:], true
}

// date matcher character classes for SkipDate
const (
	dateLetter = iota
	dateSpace
	dateNumber
	dateSpaceOrNumber
	dateColon
)

// "Mmm dd hh:mm:ss " — 16 positions including the trailing space.
var dateSequence = []int{
	dateLetter, dateLetter, dateLetter,
	dateSpace,
	dateSpaceOrNumber, dateNumber,
	dateSpace,
	dateSpaceOrNumber, dateNumber,
	dateColon,
	dateSpaceOrNumber, dateNumber,
	dateColon,
	dateSpaceOrNumber, dateNumber,
	dateSpace,
}

// SkipDate consumes an optional legacy "Mmm dd hh:mm:ss " date prefix. This is
// a lenient skip, not a validation: if any position fails its character class
// the original buffer is returned and the remainder is left for the caller to
// treat as message text.
func SkipDate(buf []byte) []byte {
	if len(buf) < len(dateSequence) {
		return buf
	}

	for i, class := range dateSequence {
		c := buf[i]

		switch class {
		case dateSpace:
			if c != ' ' {
				return buf
			}
		case dateSpaceOrNumber:
			if c == ' ' {
				break
			}
			fallthrough
		case dateNumber:
			if c < '0' || c > '9' {
				return buf
			}
		case dateLetter:
			if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') {
				return buf
			}
		case dateColon:
			if c != ':' {
				return buf
			}
		}
	}

	return buf[len(dateSequence):]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// NextToken splits off the next whitespace-delimited token, consuming leading
// whitespace. Returns nil when the buffer holds no token.
func NextToken(buf []byte) (token, rest []byte) {
	p := 0
	for p < len(buf) && isWhitespace(buf[p]) {
		p++
	}
	e := p
	for e < len(buf) && !isWhitespace(buf[e]) {
		e++
	}
	if e == p {
		return nil, buf
	}
	return buf[p:e], buf[e:]
}

// ParseIdentifier extracts the syslog tag from the front of a message: a
// whitespace-delimited token ending in ':', optionally carrying a "[pid]"
// suffix. On success it returns the identifier, the raw pid digits (nil if no
// bracket pair was found) and the remainder with trailing whitespace consumed.
// A token that is empty or not colon-terminated yields no identifier and the
// buffer is returned unchanged; callers treat that as a plain message with no
// header metadata.
func ParseIdentifier(buf []byte) (identifier, pid, rest []byte) {
	p := 0
	for p < len(buf) && isWhitespace(buf[p]) {
		p++
	}

	l := p
	for l < len(buf) && !isWhitespace(buf[l]) {
		l++
	}
	l -= p
	token := buf[p : p+l]

	if l <= 1 || token[l-1] != ':' {
		return nil, nil, buf
	}

	e := p + l
	l-- // drop the ':'

	if token[l-1] == ']' {
		for k := l - 1; ; k-- {
			if token[k] == '[' {
				pid = token[k+1 : l-1]
				l = k
				break
			}
			if k == 0 {
				break
			}
		}
	}

	identifier = token[:l]

	for e < len(buf) && isWhitespace(buf[e]) {
		e++
	}
	return identifier, pid, buf[e:]
}

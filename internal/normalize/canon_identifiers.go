package normalize

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/docintel/internal/corpus"
)

var nonDigit = regexp.MustCompile(`\D`)

// tollFreeAreaCodes are the NANP area codes reserved for toll-free service.
var tollFreeAreaCodes = map[string]bool{
	"800": true, "833": true, "844": true, "855": true,
	"866": true, "877": true, "888": true,
}

// phoneResult is the metadata bag §6.4 describes for a PHONE entity. digits
// is the full normalized number (country code + area code + subscriber
// number); number is the subscriber number alone.
type phoneResult struct {
	digits            string
	country           string
	areaCode          string
	number            string
	lineClass         string
	formattedNational string
	formattedE164     string
}

func normalizePhone(text string) (phoneResult, error) {
	digits := nonDigit.ReplaceAllString(text, "")
	switch len(digits) {
	case 11:
		if digits[0] != '1' {
			return phoneResult{}, fmt.Errorf("phone: unrecognized country prefix in %q", text)
		}
		return phoneFromNANP(digits[1:4], digits[4:], "1"), nil
	case 10:
		return phoneFromNANP(digits[:3], digits[3:], "1"), nil
	default:
		return phoneResult{}, fmt.Errorf("phone: unexpected digit count in %q", text)
	}
}

func phoneFromNANP(areaCode, number, country string) phoneResult {
	class := "standard"
	if tollFreeAreaCodes[areaCode] {
		class = "toll_free"
	}
	exchange, line := number[:3], number[3:]
	return phoneResult{
		digits:            country + areaCode + number,
		country:           country,
		areaCode:          areaCode,
		number:            number,
		lineClass:         class,
		formattedNational: fmt.Sprintf("(%s) %s-%s", areaCode, exchange, line),
		formattedE164:     fmt.Sprintf("+%s%s%s", country, areaCode, number),
	}
}

var regulationPattern = regexp.MustCompile(`^(\d{1,2})\s*CFR\s*(\d+)(?:\.(\d+))?$`)

// regulationResult is the metadata bag §4.6.1 describes for a REGULATION entity.
type regulationResult struct {
	title   int
	part    int
	section string
	agency  string
}

func normalizeRegulation(text string, tables corpus.CanonTables) (regulationResult, error) {
	m := regulationPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return regulationResult{}, fmt.Errorf("regulation: unrecognized citation %q", text)
	}
	title, err := strconv.Atoi(m[1])
	if err != nil {
		return regulationResult{}, fmt.Errorf("regulation: non-numeric title in %q", text)
	}
	part, err := strconv.Atoi(m[2])
	if err != nil {
		return regulationResult{}, fmt.Errorf("regulation: non-numeric part in %q", text)
	}
	agency := tables.CFRAgencies[title]
	return regulationResult{title: title, part: part, section: m[3], agency: agency}, nil
}

// normalizeURL validates a URL syntactically; it never performs network I/O.
func normalizeURL(text string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url: invalid syntax %q", text)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u.String(), nil
}

// normalizeEmail validates an email address syntactically.
func normalizeEmail(text string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("email: invalid syntax %q", text)
	}
	return strings.ToLower(addr.Address), nil
}

// Package document validates and formats Brazilian taxpayer identifiers
// (CPF for individuals, CNPJ for companies) and phone numbers.
//
// All functions are pure and total: malformed input yields false (or is
// returned unchanged by the formatters), never a panic or an error.
package document

import (
	"strings"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// Digits strips every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsValidCPF reports whether s carries a structurally valid CPF.
// Punctuation and spaces are ignored.
func IsValidCPF(s string) bool {
	d := Digits(s)
	if len(d) != cpfLength || allSame(d) {
		return false
	}

	if cpfCheckDigit(d[:9], 10) != digitAt(d, 9) {
		return false
	}
	return cpfCheckDigit(d[:10], 11) == digitAt(d, 10)
}

// cpfCheckDigit weights digits from startWeight down to 2.
// A remainder of 10 collapses to 0.
func cpfCheckDigit(d string, startWeight int) int {
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += digitAt(d, i) * (startWeight - i)
	}
	remainder := (sum * 10) % 11
	if remainder == 10 || remainder == 11 {
		remainder = 0
	}
	return remainder
}

// IsValidCNPJ reports whether s carries a structurally valid CNPJ.
// Punctuation and spaces are ignored.
func IsValidCNPJ(s string) bool {
	d := Digits(s)
	if len(d) != cnpjLength || allSame(d) {
		return false
	}

	if cnpjCheckDigit(d[:12]) != digitAt(d, 12) {
		return false
	}
	return cnpjCheckDigit(d[:13]) == digitAt(d, 13)
}

// cnpjCheckDigit applies weights 2..9 (cycling) starting at the rightmost digit.
func cnpjCheckDigit(d string) int {
	sum := 0
	weight := 2
	for i := len(d) - 1; i >= 0; i-- {
		sum += digitAt(d, i) * weight
		if weight == 9 {
			weight = 2
		} else {
			weight++
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// IsValid dispatches on digit count: 11 digits are checked as a CPF,
// 14 as a CNPJ, anything else is invalid.
func IsValid(s string) bool {
	switch len(Digits(s)) {
	case cpfLength:
		return IsValidCPF(s)
	case cnpjLength:
		return IsValidCNPJ(s)
	default:
		return false
	}
}

// Kind returns "cpf", "cnpj" or "" depending on the digit count of s.
func Kind(s string) string {
	switch len(Digits(s)) {
	case cpfLength:
		return "cpf"
	case cnpjLength:
		return "cnpj"
	default:
		return ""
	}
}

// Format renders a CPF as 000.000.000-00 and a CNPJ as 00.000.000/0000-00.
// Other inputs are returned unchanged.
func Format(s string) string {
	d := Digits(s)
	switch len(d) {
	case cpfLength:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case cnpjLength:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
	default:
		return s
	}
}

// FormatPhone renders 11-digit mobile numbers as (11) 99999-9999 and
// 10-digit landlines as (11) 9999-9999. Other inputs are returned unchanged.
func FormatPhone(s string) string {
	d := Digits(s)
	switch len(d) {
	case 11:
		return "(" + d[0:2] + ") " + d[2:7] + "-" + d[7:11]
	case 10:
		return "(" + d[0:2] + ") " + d[2:6] + "-" + d[6:10]
	default:
		return s
	}
}

// IsValidPhone reports whether s holds a 10 or 11 digit Brazilian phone number.
func IsValidPhone(s string) bool {
	n := len(Digits(s))
	return n == 10 || n == 11
}

func digitAt(d string, i int) int {
	return int(d[i] - '0')
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

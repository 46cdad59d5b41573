package valueobject

import (
	"net/mail"
	"slices"
	"strings"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

var (
	disposableEmailDomains = []string{
		"10minutemail.com",
		"guerrillamail.com",
		"mailinator.com",
		"tempmail.com",
		"throwawaymail.com",
		"trashmail.com",
		"yopmail.com",
	}

	personalEmailProviders = []string{
		"aol.com",
		"gmail.com",
		"gmx.de",
		"gmx.net",
		"hotmail.com",
		"icloud.com",
		"outlook.com",
		"t-online.de",
		"web.de",
		"yahoo.com",
	}
)

// Email is a trimmed, lower case mail address on a non-disposable domain.
type Email struct {
	value string
}

func ParseEmail(value string) (Email, error) {
	normalised := strings.ToLower(strings.TrimSpace(value))

	if normalised == "" {
		return Email{}, domain.NewValidationError("email", "must not be empty")
	}

	address, err := mail.ParseAddress(normalised)
	if err != nil || address.Address != normalised || address.Name != "" {
		return Email{}, domain.NewValidationError("email", "invalid format "+value)
	}

	email := Email{value: normalised}

	if !strings.Contains(email.Domain(), ".") {
		return Email{}, domain.NewValidationError("email", "domain must have a top level domain")
	}

	if slices.Contains(disposableEmailDomains, email.MainDomain()) {
		return Email{}, domain.NewValidationError("email", "disposable domain "+email.Domain())
	}

	return email, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}

func (e Email) Domain() string {
	index := strings.LastIndex(e.value, "@")
	if index < 0 {
		return ""
	}

	return e.value[index+1:]
}

// MainDomain strips subdomains: "mail.example.com" becomes "example.com".
func (e Email) MainDomain() string {
	parts := strings.Split(e.Domain(), ".")
	if len(parts) <= 2 {
		return e.Domain()
	}

	return strings.Join(parts[len(parts)-2:], ".")
}

func (e Email) TopLevelDomain() string {
	domainName := e.Domain()
	return domainName[strings.LastIndex(domainName, ".")+1:]
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

func (e Email) IsSameDomain(other Email) bool {
	return e.Domain() == other.Domain()
}

// IsCompanyEmail reports whether the address is not hosted by a well known personal mail provider.
func (e Email) IsCompanyEmail() bool {
	return !slices.Contains(personalEmailProviders, e.MainDomain())
}

// Obfuscate keeps the first and last character of the local part, e.g. "j**n@example.com".
func (e Email) Obfuscate() string {
	local := []rune(e.LocalPart())

	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + e.Domain()
	}

	return string(local[0]) + strings.Repeat("*", len(local)-2) + string(local[len(local)-1]) + "@" + e.Domain()
}

func (e Email) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

func (e *Email) UnmarshalText(text []byte) error {
	parsed, err := ParseEmail(string(text))
	if err != nil {
		return err
	}

	*e = parsed

	return nil
}

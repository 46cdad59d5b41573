package valueobject

import (
	"net/url"
	"strings"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// Link is an absolute URL with scheme and host. Fragments and user info are dropped.
type Link struct {
	value  string
	scheme string
	host   string
	path   string
	query  string
}

func ParseLink(value string) (Link, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Link{}, domain.NewValidationError("link", "must not be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Link{}, domain.NewValidationError("link", "invalid url "+value)
	}

	if parsed.Scheme == "" || parsed.Host == "" || parsed.Hostname() == "" {
		return Link{}, domain.NewValidationError("link", "scheme and host are required in "+value)
	}

	l := Link{
		scheme: strings.ToLower(parsed.Scheme),
		host:   strings.ToLower(parsed.Host),
		path:   parsed.EscapedPath(),
		query:  parsed.RawQuery,
	}

	l.value = l.scheme + "://" + l.host + l.path
	if l.query != "" {
		l.value += "?" + l.query
	}

	return l, nil
}

func (l Link) String() string {
	return l.value
}

func (l Link) Equals(other Link) bool {
	return l.value == other.value
}

func (l Link) Scheme() string {
	return l.scheme
}

// Host includes the port if the link has one.
func (l Link) Host() string {
	return l.host
}

func (l Link) Path() string {
	return l.path
}

// Query is the raw query string without the leading "?".
func (l Link) Query() string {
	return l.query
}

func (l Link) IsSecure() bool {
	return l.scheme == "https"
}

func (l Link) MarshalText() ([]byte, error) {
	return []byte(l.value), nil
}

func (l *Link) UnmarshalText(text []byte) error {
	parsed, err := ParseLink(string(text))
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

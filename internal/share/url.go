package share

import (
	"net/url"
	"strings"
)

// BuildURL appends payload to base as the share query parameter, replacing
// any existing one.
func BuildURL(base, payload string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(Param, payload)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StripParam removes the share parameter from rawURL and keeps everything else.
func StripParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	q := u.Query()
	q.Del(Param)
	u.RawQuery = q.Encode()
	return u.String()
}

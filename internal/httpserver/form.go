package httpserver

import (
	"net/url"
	"strings"
)

// FormValues decodes an application/x-www-form-urlencoded body into a
// key/value map. It never reads from the connection itself — by the
// time a handler calls this, the parser has already read Body in full,
// so this is pure decoding.
func (r *Request) FormValues() (map[string]string, error) {
	if r.Method != MethodPOST {
		return nil, errNotFormPost
	}
	ct, ok := r.Header["content-type"]
	if !ok || !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		return nil, errNotFormPost
	}

	values := make(map[string]string)
	for _, pair := range strings.Split(string(r.Body), "&") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		values[decodedKey] = decodedValue
	}
	return values, nil
}

var errNotFormPost = formError("httpserver: not a urlencoded POST body")

type formError string

func (e formError) Error() string { return string(e) }

package articles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"stockcore/pkg/domain"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

const formContentType = "application/x-www-form-urlencoded"

// decodeArticle reads a JSON object or an urlencoded form from the body. An
// empty body or an unrecognised content type yields an empty article.
func decodeArticle(w http.ResponseWriter, r *http.Request) (domain.Article, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return domain.Article{}, err
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return domain.Article{}, fmt.Errorf("parse content type: %w", err)
		}
	}

	switch {
	case mediaType == formContentType:
		return decodeForm(string(data))
	case mediaType == "" || mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		if len(bytes.TrimSpace(data)) == 0 {
			return domain.NewArticle(), nil
		}
		var a domain.Article
		if err := json.Unmarshal(data, &a); err != nil {
			return domain.Article{}, err
		}
		return a, nil
	default:
		return domain.NewArticle(), nil
	}
}

// decodeForm keeps pair order. Values are strings; a repeated key becomes an
// array of strings at the key's first position.
func decodeForm(body string) (domain.Article, error) {
	var keys []string
	values := make(map[string][]string)
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return domain.Article{}, fmt.Errorf("decode form key: %w", err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return domain.Article{}, fmt.Errorf("decode form value %s: %w", key, err)
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = append(values[key], value)
	}

	a := domain.NewArticle()
	for _, k := range keys {
		var v any = values[k]
		if len(values[k]) == 1 {
			v = values[k][0]
		}
		if err := a.Set(k, v); err != nil {
			return domain.Article{}, err
		}
	}
	return a, nil
}

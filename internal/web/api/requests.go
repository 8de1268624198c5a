package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wpschema/wpschema/internal/page"
)

var errNoRoute = errors.New("No route was found matching the URL and request method.")

// pageRequest is the wire form of page.Request shared by the generate
// body and the head query string
type pageRequest struct {
	Context  string `json:"context" validate:"omitempty,oneof=home singular archive search taxonomy author notfound"`
	PostID   int64  `json:"post_id" validate:"gte=0,required_if=Context singular"`
	TermID   int64  `json:"term_id" validate:"gte=0,required_if=Context taxonomy"`
	Taxonomy string `json:"taxonomy" validate:"omitempty,max=32"`
	AuthorID int64  `json:"author_id" validate:"gte=0,required_if=Context author"`
	Search   string `json:"search" validate:"max=200"`
	PostType string `json:"post_type" validate:"omitempty,max=20"`
	URL      string `json:"url" validate:"omitempty,url"`
	Paged    int    `json:"paged" validate:"gte=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names so the error fields match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// canonical rewrites a context alias ("post", "category", "404") to its
// page kind so the validation rules keyed on kinds apply to aliases too.
// Unknown values are left for the validator to reject.
func (pr pageRequest) canonical() pageRequest {
	if kind, err := page.ParseKind(pr.Context); err == nil {
		pr.Context = string(kind)
	}
	return pr
}

func (pr pageRequest) toPage() (page.Request, error) {
	kind, err := page.ParseKind(pr.Context)
	if err != nil {
		return page.Request{}, err
	}
	return page.Request{
		Kind:     kind,
		PostID:   pr.PostID,
		TermID:   pr.TermID,
		Taxonomy: pr.Taxonomy,
		AuthorID: pr.AuthorID,
		Search:   pr.Search,
		PostType: pr.PostType,
		URL:      pr.URL,
		Paged:    pr.Paged,
	}, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// queryRequest reads a pageRequest from the query string. Numeric
// parameters are base 10 only, so "010" is 10 as in WordPress.
func queryRequest(q url.Values) (pageRequest, error) {
	pr := pageRequest{
		Context:  q.Get("context"),
		Taxonomy: q.Get("taxonomy"),
		Search:   q.Get("search"),
		PostType: q.Get("post_type"),
		URL:      q.Get("url"),
	}
	ints := []struct {
		name string
		dst  *int64
	}{
		{"post_id", &pr.PostID},
		{"term_id", &pr.TermID},
		{"author_id", &pr.AuthorID},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return pr, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = v
	}
	if raw := q.Get("paged"); raw != "" {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return pr, fmt.Errorf("invalid paged: %q", raw)
		}
		pr.Paged = v
	}
	return pr, nil
}

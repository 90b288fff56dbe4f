// Package search holds the search state carried in the invoice listing URL
// and the debounced synchronizer that writes typed input back into it.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// URL query parameter names
const (
	ParamQuery = "query"
	ParamPage  = "page"
)

// Params is the search state reconstructed from a URL
type Params struct {
	Query string
	Page  int
}

// ParseParams reads the search state. page defaults to 1 when absent,
// non-numeric or below 1.
func ParseParams(values url.Values) Params {
	return Params{
		Query: strings.TrimSpace(values.Get(ParamQuery)),
		Page:  models.ParsePage(values.Get(ParamPage)),
	}
}

// ReplaceQuery returns a copy of u with the query parameter set to term, or
// removed when term is empty. A new search always starts on page 1.
func ReplaceQuery(u *url.URL, term string) *url.URL {
	next := *u
	values := u.Query()

	if term != "" {
		values.Set(ParamQuery, term)
	} else {
		values.Del(ParamQuery)
	}
	values.Set(ParamPage, "1")

	next.RawQuery = values.Encode()
	return &next
}

// PageURL returns the URL of page within the current search
func PageURL(u *url.URL, page int) string {
	next := *u
	values := u.Query()
	values.Set(ParamPage, strconv.Itoa(page))
	next.RawQuery = values.Encode()
	return next.RequestURI()
}

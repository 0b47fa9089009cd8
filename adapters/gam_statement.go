// adapters/gam_statement.go
package adapters

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/openadtools/adbridge"
)

// statementParams renders FilterOptions into the provider's list query
// parameters. Sort defaults to id. Filter keys and values are the provider's
// vocabulary and pass through verbatim; this layer does not interpret them.
func statementParams(opts adbridge.FilterOptions) url.Values {
	v := url.Values{}
	order := opts.Order
	if order == "" {
		order = "id"
	}
	v.Set("orderBy", order)
	if opts.Limit > 0 {
		v.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		v.Set("offset", strconv.Itoa(opts.Offset))
	}
	for key, val := range opts.Filters {
		v.Set("filter."+key, fmt.Sprint(val))
	}
	return v
}

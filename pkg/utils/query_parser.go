package utils

import (
	"net/url"
	"strconv"
	"strings"

	"asset-system/pkg/types"
)

// ParseFilterFromQuery reads filter[...], sort[...], search, limit, offset
// and page from the query string into a types.Filter.
func ParseFilterFromQuery(query url.Values) types.Filter {
	filter := types.Filter{
		Filter:         make(map[string]interface{}),
		Sort:           make(map[string]string),
		Limit:          10,
		Offset:         0,
		Page:           1,
		WithPagination: true,
	}

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			filter.Filter[key[7:len(key)-1]] = values[0]
		}
		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			filter.Sort[key[5:len(key)-1]] = values[0]
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
			if filter.Limit > 0 {
				filter.Page = (o / filter.Limit) + 1
			}
		}
	}
	// page wins only when offset is absent
	if pageStr := query.Get("page"); pageStr != "" && filter.Offset == 0 {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filter.Page = p
			filter.Offset = (p - 1) * filter.Limit
		}
	}

	if search := query.Get("search"); search != "" {
		filter.Search = search
	}

	return filter
}

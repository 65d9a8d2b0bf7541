package gitea

import (
	"net/url"
	"strconv"
)

// pageQuery builds the pagination query string. The backend treats page as the
// 1-based page number and limit as the page size; absent values leave the
// backend defaults in place.
func pageQuery(page, limit *int) url.Values {
	if page == nil && limit == nil {
		return nil
	}

	query := url.Values{}
	if page != nil {
		query.Add("page", strconv.Itoa(*page))
	}

	if limit != nil {
		query.Add("limit", strconv.Itoa(*limit))
	}

	return query
}

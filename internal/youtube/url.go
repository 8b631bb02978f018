// Package youtube integrates with the YouTube Data API v3: extracting video
// ids from watch URLs and fetching metadata or search results upstream.
package youtube

import "net/url"

// ExtractVideoID pulls the video id out of a YouTube watch URL by reading
// the canonical "v" query parameter. The match is case-sensitive and the
// first value wins when the parameter repeats. It reports false for
// malformed URLs, URLs without a query string and URLs without the
// parameter. Pure, no I/O.
func ExtractVideoID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	vals, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", false
	}
	ids, ok := vals["v"]
	if !ok || len(ids) == 0 || ids[0] == "" {
		return "", false
	}
	return ids[0], true
}

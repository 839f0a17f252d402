package lists

import "net/url"

// ShareLink maps a list id to the app deep link used to join it. Pure
// string construction, no store access.
func ShareLink(listID string) string {
	return "maggie://join-list?id=" + url.QueryEscape(listID)
}

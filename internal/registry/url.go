package registry

import "net/url"

// buildURL is the single authoritative rule for composing a request URL
// from a registry base, a (possibly nil/""/".") context, and a resource
// path. The default context collapses all three spellings to the same
// endpoint; a named context C prefixes the path with /contexts/:C.
func buildURL(base, context, path string) string {
	if context == "" || context == "." {
		return base + path
	}
	return base + "/contexts/" + url.PathEscape(context) + path
}

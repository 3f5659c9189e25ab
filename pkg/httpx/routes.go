package httpx

import "strings"

// RouteRule maps one (method, path pattern) pair onto the authority a
// caller needs. Patterns are literal path segments except "*", which
// matches exactly one segment — never zero, never several.
type RouteRule struct {
	Method    string
	Pattern   string
	Authority string
}

// RouteTable is the ordered authorization table consulted on every request.
// The first matching rule wins, so more specific patterns must be listed
// before wildcard ones. A request matching no rule still requires an
// authenticated principal, just no particular authority: unknown routes
// are default-secure, not public and not denied outright.
type RouteTable []RouteRule

// Match returns the authority required for the request, and whether any
// rule matched at all.
func (t RouteTable) Match(method, path string) (string, bool) {
	for _, rule := range t {
		if rule.Method != method {
			continue
		}
		if matchPattern(rule.Pattern, path) {
			return rule.Authority, true
		}
	}
	return "", false
}

// matchPattern compares a path against a pattern segment by segment.
func matchPattern(pattern, path string) bool {
	pat := splitPath(pattern)
	seg := splitPath(path)

	if len(pat) != len(seg) {
		return false
	}

	for i := range pat {
		if pat[i] == "*" {
			if seg[i] == "" {
				return false
			}
			continue
		}
		if pat[i] != seg[i] {
			return false
		}
	}

	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// HasAuthority reports whether the required authority is present in the
// principal's role list. An empty requirement is always satisfied.
func HasAuthority(required string, roles []string) bool {
	if required == "" {
		return true
	}
	for _, r := range roles {
		if r == required {
			return true
		}
	}
	return false
}

package urlnorm

import (
	"net/url"
	"path"
	"strings"
)

/*
Normalizer canonicalizes URLs to a single form so that two spellings of the
same resource (differing only in fragment, default port, host case, or a
trailing host dot) compare equal.

Adapted from pkg/urlutil.Canonicalize's lowercase/default-port idiom and
cametumbling-web-crawler's Sanitize/Key pattern of resolving against a base
before validating scheme and host.
*/

// Normalize parses raw, resolving it against base first when it is
// relative, and returns the canonical form. It returns nil when raw is
// malformed, resolves to a non-http(s) scheme, has an empty host, or
// cannot be resolved because base itself is broken.
func Normalize(raw string, base *url.URL) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}

	host := strings.ToLower(resolved.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return nil
	}

	canonical := *resolved
	canonical.Scheme = strings.ToLower(resolved.Scheme)
	canonical.Host = joinHostPort(host, resolved.Scheme, resolved.Port())
	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.Path = cleanPath(resolved.Path)
	canonical.User = nil

	return &canonical
}

// joinHostPort reassembles host[:port], dropping the port when it matches
// the scheme's default.
func joinHostPort(host, scheme, port string) string {
	if port == "" {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return host
	}
	return host + ":" + port
}

// cleanPath collapses "."/".." segments and guarantees a leading slash.
// Path is operated on in decoded form; url.URL re-encodes it deterministically
// when String() is called.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	// path.Clean drops a trailing slash; preserve it if the caller had one
	// and it wasn't collapsed away (e.g. "/a/../" -> "/").
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(cleaned, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

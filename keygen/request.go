package keygen

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CacheControlHeader is the header name passed to Request.HeaderValue
// when checking for the NoCache directive.
const CacheControlHeader = "Cache-Control"

// Request is the shape the request strategy keys on. Implementations
// decide their own header-name lookup semantics; net/http uses canonical
// MIME form, so lookups through HTTPRequest are name-case-insensitive.
type Request interface {
	// QueryParams returns the request's query parameters.
	QueryParams() url.Values

	// HeaderValue returns the value of the named header, or "".
	HeaderValue(name string) string
}

// HTTPRequest adapts an *http.Request into a Request.
func HTTPRequest(r *http.Request) Request {
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) QueryParams() url.Values {
	return h.r.URL.Query()
}

func (h httpRequest) HeaderValue(name string) string {
	return h.r.Header.Get(name)
}

// valuesRequest adapts bare query parameters; it carries no headers.
type valuesRequest url.Values

func (v valuesRequest) QueryParams() url.Values {
	return url.Values(v)
}

func (v valuesRequest) HeaderValue(_ string) string {
	return ""
}

// RequestGenerator keys a call on its first argument's query parameters.
//
// The first argument must be a Request, an *http.Request, or url.Values.
// The key digests the sorted query-parameter mapping: parameter names in
// lexicographic order, per-name values in arrival order. Invalidation is
// signaled iff the Cache-Control header's value is exactly NoCache; the
// value match is case-sensitive and admits no parameter lists.
type RequestGenerator struct {
	digest       Digest
	ignored      map[string]struct{}
	subjectClaim string
}

// RequestOption configures a RequestGenerator.
type RequestOption func(*RequestGenerator)

// WithRequestDigest overrides the digest used to fingerprint key material.
func WithRequestDigest(d Digest) RequestOption {
	return func(g *RequestGenerator) {
		g.digest = d
	}
}

// WithIgnoredParams excludes the named query parameters from key
// material, so requests differing only in those parameters share an
// entry. Typical use: pagination parameters such as "page" and
// "page_size".
func WithIgnoredParams(names ...string) RequestOption {
	return func(g *RequestGenerator) {
		if g.ignored == nil {
			g.ignored = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			g.ignored[name] = struct{}{}
		}
	}
}

// WithSubjectClaim partitions the keyspace per caller: the named claim
// from the request's bearer token joins the key material. The token is
// parsed without signature verification - the claim scopes cache entries
// to an identity, it does not authenticate anyone; authentication belongs
// to upstream middleware. A missing or unparseable token contributes an
// empty claim.
func WithSubjectClaim(claim string) RequestOption {
	return func(g *RequestGenerator) {
		g.subjectClaim = claim
	}
}

// NewRequestGenerator creates the request-strategy generator.
func NewRequestGenerator(opts ...RequestOption) *RequestGenerator {
	g := &RequestGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.digest == nil {
		g.digest = DigestMD5
	}
	return g
}

// Derive builds the key from the first argument's query parameters and
// reads the invalidation signal from its Cache-Control header.
func (g *RequestGenerator) Derive(_ context.Context, args []any) (Derivation, error) {
	if len(args) == 0 {
		return Derivation{}, ErrNoArguments
	}

	req, err := asRequest(args[0])
	if err != nil {
		return Derivation{}, err
	}

	params := req.QueryParams()
	names := make([]string, 0, len(params))
	for name := range params {
		if _, skip := g.ignored[name]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b bytes.Buffer
	for _, name := range names {
		writeField(&b, 'p', name)
		for _, value := range params[name] {
			writeField(&b, 'v', value)
		}
	}
	if g.subjectClaim != "" {
		writeField(&b, 'c', g.subjectFrom(req))
	}

	return Derivation{
		Key:        g.digest(b.Bytes()),
		Invalidate: req.HeaderValue(CacheControlHeader) == NoCache,
	}, nil
}

func asRequest(v any) (Request, error) {
	switch r := v.(type) {
	case Request:
		if r == nil {
			return nil, ErrNotRequest
		}
		return r, nil
	case *http.Request:
		if r == nil {
			return nil, ErrNotRequest
		}
		return HTTPRequest(r), nil
	case url.Values:
		return valuesRequest(r), nil
	default:
		return nil, ErrNotRequest
	}
}

// subjectFrom extracts the configured claim from the request's bearer
// token, or "" if there is none to extract.
func (g *RequestGenerator) subjectFrom(req Request) string {
	header := req.HeaderValue("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if value, ok := claims[g.subjectClaim].(string); ok {
		return value
	}
	return ""
}

// Ensure RequestGenerator implements Generator
var _ Generator = (*RequestGenerator)(nil)

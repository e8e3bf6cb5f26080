package archive

import (
	"fmt"
	"strings"
)

// URIResolver turns stored object paths into public file URIs.
type URIResolver struct {
	publicURL string
	bucket    string
}

// NewURIResolver creates the resolver. publicURL may be empty, in which case
// raw storage paths are returned unchanged.
func NewURIResolver(publicURL, bucket string) *URIResolver {
	return &URIResolver{
		publicURL: strings.TrimRight(publicURL, "/"),
		bucket:    strings.Trim(bucket, "/"),
	}
}

// Resolve maps storage paths to public URIs.
func (r *URIResolver) Resolve(paths []string) []string {
	uris := make([]string, 0, len(paths))
	for _, path := range paths {
		uris = append(uris, r.ResolveOne(path))
	}
	return uris
}

// ResolveOne maps a single storage path to a public URI.
func (r *URIResolver) ResolveOne(path string) string {
	if r == nil || r.publicURL == "" {
		return path
	}
	path = strings.TrimLeft(path, "/")
	if r.bucket != "" {
		return fmt.Sprintf("%s/%s/%s", r.publicURL, r.bucket, path)
	}
	return fmt.Sprintf("%s/%s", r.publicURL, path)
}

package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIResolver(t *testing.T) {
	t.Run("joins public url, bucket and path", func(t *testing.T) {
		r := NewURIResolver("https://cdn.example.com/", "/heritage/")
		assert.Equal(t, "https://cdn.example.com/heritage/files/a.jpg", r.ResolveOne("/files/a.jpg"))
	})

	t.Run("no bucket", func(t *testing.T) {
		r := NewURIResolver("https://cdn.example.com", "")
		assert.Equal(t, "https://cdn.example.com/files/a.jpg", r.ResolveOne("files/a.jpg"))
	})

	t.Run("empty public url returns raw path", func(t *testing.T) {
		r := NewURIResolver("", "heritage")
		assert.Equal(t, "files/a.jpg", r.ResolveOne("files/a.jpg"))
	})

	t.Run("nil resolver returns raw path", func(t *testing.T) {
		var r *URIResolver
		assert.Equal(t, "files/a.jpg", r.ResolveOne("files/a.jpg"))
	})

	t.Run("resolve many", func(t *testing.T) {
		r := NewURIResolver("https://cdn.example.com", "heritage")
		got := r.Resolve([]string{"a.jpg", "b.mp4"})
		assert.Equal(t, []string{
			"https://cdn.example.com/heritage/a.jpg",
			"https://cdn.example.com/heritage/b.mp4",
		}, got)
	})
}

package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerturbQuery(t *testing.T) {
	t.Run("drops the last token first", func(t *testing.T) {
		got := PerturbQuery("batik textiles java", []string{"batik textiles java"})
		assert.Equal(t, "batik textiles", got)
	})

	t.Run("appends suffixes for single-token queries", func(t *testing.T) {
		got := PerturbQuery("batik", []string{"batik"})
		assert.Equal(t, "batik heritage", got)
	})

	t.Run("skips suffixes already tried", func(t *testing.T) {
		got := PerturbQuery("batik", []string{"batik", "batik heritage"})
		assert.Equal(t, "batik traditional", got)
	})

	t.Run("skips suffixes already present in the query", func(t *testing.T) {
		got := PerturbQuery("heritage", []string{"heritage"})
		assert.Equal(t, "heritage traditional", got)
	})

	t.Run("deterministic for a given history", func(t *testing.T) {
		first := PerturbQuery("batik", []string{"batik"})
		second := PerturbQuery("batik", []string{"batik"})
		assert.Equal(t, first, second)
	})

	t.Run("empty base yields nothing", func(t *testing.T) {
		assert.Equal(t, "", PerturbQuery("   ", nil))
	})

	t.Run("exhausted variants yield nothing", func(t *testing.T) {
		tried := []string{
			"batik",
			"batik heritage",
			"batik traditional",
			"batik cultural",
			"batik archive",
			"batik history",
		}
		assert.Equal(t, "", PerturbQuery("batik", tried))
	})
}

package archive

import "errors"

// ErrVectorDisabled is returned when the vector index or embedder is not
// configured. Callers degrade to metadata-only behavior.
var ErrVectorDisabled = errors.New("vector search is disabled")

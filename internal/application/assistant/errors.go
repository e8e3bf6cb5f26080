package assistant

import (
	apperrors "heritage-archive-api/pkg/errors"
)

// Predefined errors
var (
	ErrEmptyUtterance = apperrors.New(apperrors.CodeInvalidParam, "utterance is empty")
	ErrNotConfigured  = apperrors.New(apperrors.CodeSearchUnavailable, "search backend not configured")
)

package resolver

import "errors"

var (
	// ErrLinkNotFound код неизвестен хранилищу (или закеширован как неизвестный).
	ErrLinkNotFound = errors.New("[resolver]: link not found")
	// ErrResolutionUnavailable холодный промах при недоступном хранилище —
	// редиректить некуда.
	ErrResolutionUnavailable = errors.New("[resolver]: destination store unavailable")
)

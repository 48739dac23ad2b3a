package httpx

import "errors"

// ErrorRule maps a sentinel error to the AppError constructor used for it
type ErrorRule struct {
	Target error
	Build  func(message string) *AppError
}

// ErrorMap resolves service errors to AppErrors, first matching rule wins
type ErrorMap []ErrorRule

// Resolve returns err as an AppError. The sentinel's text becomes the
// user-facing message; unmatched errors become 5001.
func (m ErrorMap) Resolve(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, rule := range m {
		if errors.Is(err, rule.Target) {
			return rule.Build(rule.Target.Error())
		}
	}
	return ErrInternalError("internal error", err)
}

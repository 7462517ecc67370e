package utils

import "context"

const (
	requestIdentifierContextKeyConstant = requestContextKey("requestIdentifier")
)

type requestContextKey string

// RequestContextAccessor manages values stored in HTTP request contexts.
type RequestContextAccessor struct{}

// NewRequestContextAccessor constructs a RequestContextAccessor instance.
func NewRequestContextAccessor() RequestContextAccessor {
	return RequestContextAccessor{}
}

// WithRequestIdentifier attaches the request identifier to the provided context.
func (accessor RequestContextAccessor) WithRequestIdentifier(parentContext context.Context, requestIdentifier string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, requestIdentifierContextKeyConstant, requestIdentifier)
}

// RequestIdentifier extracts the request identifier from the provided context.
func (accessor RequestContextAccessor) RequestIdentifier(requestContext context.Context) (string, bool) {
	if requestContext == nil {
		return "", false
	}
	requestIdentifier, requestIdentifierAvailable := requestContext.Value(requestIdentifierContextKeyConstant).(string)
	if !requestIdentifierAvailable {
		return "", false
	}
	return requestIdentifier, true
}

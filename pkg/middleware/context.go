package middleware

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	languageKey  ctxKey = "lang"

	HeaderRequestID = "x-request-id"
	HeaderLanguage  = "x-lang"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

// LanguageFromContext returns the caller's preferred language, "" if unknown.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(languageKey).(string); ok {
		return v
	}
	return ""
}

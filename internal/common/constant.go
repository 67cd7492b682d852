package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token value in the Authorization header.
	BearerPrefix = "Bearer "

	// DateLayout is the calendar-date key format for day records.
	DateLayout = "2006-01-02"
)

package constants

// Status codes the gateway answers with.
const (
	StatusOK                  = 200
	StatusMethodNotAllowed    = 405 // every analytics route is GET-only
	StatusTooManyRequests     = 429 // api.rate_limit exceeded
	StatusInternalServerError = 500 // storage failure or recovered panic
	StatusServiceUnavailable  = 503 // health check failed
)

// Header names set or read by the middleware chain.
const (
	HeaderContentType         = "Content-Type"
	HeaderXRequestID          = "X-Request-ID"
	HeaderRetryAfter          = "Retry-After"
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderXFrameOptions       = "X-Frame-Options"
	HeaderReferrerPolicy      = "Referrer-Policy"
)

// ContentTypeJSON is the only media type the gateway produces.
const ContentTypeJSON = "application/json"

// Values for the security headers. Responses are plain JSON and are never
// meant to be framed or sniffed as anything else.
const (
	ContentTypeOptionsNoSniff  = "nosniff"
	FrameOptionsDeny           = "DENY"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
)

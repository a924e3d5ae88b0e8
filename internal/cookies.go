package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "catcare_access_token"
	COOKIE_REDIRECT_NAME     = "catcare_redirect"
)

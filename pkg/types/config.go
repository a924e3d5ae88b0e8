package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// DatabaseMaxConns caps the pool; zero keeps the pgx default.
	DatabaseMaxConns int32 `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Cat photos
	S3BucketName    string `envconfig:"S3_BUCKET_NAME" default:"catcare-photos"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Schedule
	Timezone    string `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	ClinicsFile string `envconfig:"CLINICS_FILE"`

	// Both default to the strict rules: only leaders create, only leaders or
	// the assigned volunteer edit.
	OpenCreation bool `envconfig:"SCHEDULE_OPEN_CREATION" default:"false"`
	OpenEdit     bool `envconfig:"SCHEDULE_OPEN_EDIT" default:"false"`
}

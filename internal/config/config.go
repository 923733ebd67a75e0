package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string
	GatewayDriver string
	GatewayToken  string

	// Approval workflow
	ApprovalChannelID string
	ReviewerIDs       []string
	ReviewerRoleID    string
	RequestsFile      string
	SinkURL           string
	TicketCloseDelay  time.Duration
	RequireDeathsShot bool

	// Roster database (disabled if empty)
	DatabaseURL   string
	MigrationsDir string

	// Intake session storage (in-memory if empty)
	RedisURL string

	// Player search
	MeiliURL       string
	MeiliMasterKey string

	// Screenshot storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	UploadDir      string
	MaxFileSize    int64

	// Dashboard
	CORSOrigin     string
	AdminTokenHash string
}

func Load() Config {
	return Config{
		Addr:          getenv("BOT_API_ADDR", ":3000"),
		GatewayDriver: getenv("GATEWAY_DRIVER", "memory"),
		GatewayToken:  getenv("GATEWAY_TOKEN", ""),

		ApprovalChannelID: getenv("APPROVAL_CHANNEL_ID", ""),
		ReviewerIDs:       getenvList("REVIEWER_IDS", nil),
		ReviewerRoleID:    getenv("REVIEWER_ROLE_ID", ""),
		RequestsFile:      getenv("REQUESTS_FILE", "./data/requests.json"),
		SinkURL:           getenv("DECISION_SINK_URL", ""),
		TicketCloseDelay:  time.Duration(getenvInt("TICKET_CLOSE_DELAY_SECONDS", 5)) * time.Second,
		RequireDeathsShot: getenvBool("REQUIRE_DEATHS_SCREENSHOT", true),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		MigrationsDir: getenv("MIGRATIONS_DIR", "./db/migrations"),

		RedisURL: getenv("REDIS_URL", ""),

		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "screenshots"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),
		UploadDir:      getenv("UPLOAD_DIR", "./data/uploads"),
		MaxFileSize:    int64(getenvInt("MAX_FILE_SIZE", 8*1024*1024)),

		CORSOrigin:     getenv("CORS_ORIGIN", "*"),
		AdminTokenHash: getenv("ADMIN_TOKEN_HASH", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

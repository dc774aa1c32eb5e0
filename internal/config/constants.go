package config

import "time"

// Database connection pool settings (room archive)
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// WebSocket channel settings
const (
	WSWriteTimeout    = 10 * time.Second
	WSPongTimeout     = 60 * time.Second
	WSPingInterval    = 30 * time.Second
	WSMaxMessageBytes = 16 * 1024
)

// Maximum chat message length, in runes
const MaxMessageChars = 4000

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Archive rows older than this are pruned by the cleanup job
const ArchiveRetention = 30 * 24 * time.Hour

// Rate limit for stateless token issuance, per IP per minute
const TokenIssueRateLimitPerMin = 10

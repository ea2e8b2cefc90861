package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string
	ServerPort string
	UserID     int64

	// RedisURL is optional. When set, the mailbox, scratch cache and reconcile
	// stream are backed by Redis instead of process memory.
	RedisURL string

	MaxReplyDepth   int
	MutationTimeout time.Duration
	MailboxTTL      time.Duration

	WorkerCount       int
	SyncStreamEnabled bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:" + serverPort
	}

	userID, err := strconv.ParseInt(os.Getenv("USER_ID"), 10, 64)
	if err != nil || userID <= 0 {
		userID = 1
	}

	maxReplyDepth, err := strconv.Atoi(os.Getenv("MAX_REPLY_DEPTH"))
	if err != nil || maxReplyDepth <= 0 {
		maxReplyDepth = 3
	}

	mutationTimeout, err := strconv.Atoi(os.Getenv("MUTATION_TIMEOUT_SECONDS"))
	if err != nil || mutationTimeout <= 0 {
		mutationTimeout = 10
	}

	mailboxTTL, err := strconv.Atoi(os.Getenv("MAILBOX_TTL_SECONDS"))
	if err != nil || mailboxTTL <= 0 {
		mailboxTTL = 86400
	}

	workerCount, err := strconv.Atoi(os.Getenv("WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 2
	}

	syncStreamEnabled, err := strconv.ParseBool(os.Getenv("SYNC_STREAM_ENABLED"))
	if err != nil {
		syncStreamEnabled = false
	}

	return &Config{
		APIBaseURL: apiBaseURL,
		ServerPort: serverPort,
		UserID:     userID,

		RedisURL: os.Getenv("REDIS_URL"),

		MaxReplyDepth:   maxReplyDepth,
		MutationTimeout: time.Duration(mutationTimeout) * time.Second,
		MailboxTTL:      time.Duration(mailboxTTL) * time.Second,

		WorkerCount:       workerCount,
		SyncStreamEnabled: syncStreamEnabled,
	}, nil
}

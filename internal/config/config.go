package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Values are read once at
// startup; components receive the struct (or individual values) rather than
// reading the environment themselves.
type Config struct {
	// HTTPAddr is the listen address for the web server, e.g. ":8080".
	HTTPAddr string

	// SessionSecret signs the cookie session store.
	SessionSecret string

	// RealtimeSigningKey is the secret used to mint and verify realtime
	// channel credentials. An empty value is a configuration error surfaced
	// by the token endpoint, not a startup failure: the rest of the app
	// (CRUD, pages) stays usable without realtime.
	RealtimeSigningKey string

	// StorageBackend selects the student repository: memory, postgres or surreal.
	StorageBackend string
	PostgresURL    string
	SurrealURL     string
	SurrealNS      string
	SurrealDB      string
	SurrealUser    string
	SurrealPass    string

	// PubSubBackend selects the message bus: memory (in-process) or nats.
	PubSubBackend string
	NATSURL       string

	// AIGatewayURL and AIGatewayKey configure the chatbot proxy. Both empty
	// means the chatbot endpoint answers 503 with a setup hint.
	AIGatewayURL   string
	AIGatewayKey   string
	AIGatewayModel string

	// AvatarDir is where uploaded profile images are stored.
	AvatarDir string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		SessionSecret:      getEnv("SESSION_SECRET", "rollcall-dev-secret"),
		RealtimeSigningKey: os.Getenv("REALTIME_SIGNING_KEY"),
		StorageBackend:     getEnv("STORAGE_BACKEND", "memory"),
		PostgresURL:        os.Getenv("POSTGRES_URL"),
		SurrealURL:         os.Getenv("SURREAL_URL"),
		SurrealNS:          os.Getenv("SURREAL_NS"),
		SurrealDB:          os.Getenv("SURREAL_DB"),
		SurrealUser:        os.Getenv("SURREAL_USER"),
		SurrealPass:        os.Getenv("SURREAL_PASS"),
		PubSubBackend:      getEnv("PUBSUB_BACKEND", "memory"),
		NATSURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		AIGatewayURL:       os.Getenv("AI_GATEWAY_URL"),
		AIGatewayKey:       os.Getenv("AI_GATEWAY_KEY"),
		AIGatewayModel:     getEnv("AI_GATEWAY_MODEL", "llama-3.1-8b-instruct"),
		AvatarDir:          getEnv("AVATAR_DIR", "web/static/avatars"),
	}

	switch cfg.StorageBackend {
	case "memory", "postgres", "surreal":
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q (want memory, postgres or surreal)", cfg.StorageBackend)
	}

	if cfg.StorageBackend == "postgres" && cfg.PostgresURL == "" {
		log.Fatal("STORAGE_BACKEND=postgres requires POSTGRES_URL to be set.")
	}
	if cfg.StorageBackend == "surreal" && (cfg.SurrealURL == "" || cfg.SurrealNS == "" || cfg.SurrealDB == "") {
		log.Fatal("STORAGE_BACKEND=surreal requires SURREAL_URL, SURREAL_NS and SURREAL_DB to be set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

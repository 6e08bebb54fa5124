package model

// ================ Config ================
type ConversationConfig struct {
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"20"`
	}
}

type IntentModelConfig struct {
	Model       string  `envconfig:"INTENT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"INTENT_MAX_TOKENS" default:"16"`
	Temperature float32 `envconfig:"INTENT_TEMPERATURE" default:"0"`
}

type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0"`
}

type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0.4"`
	TopK        int     `envconfig:"ANSWER_TOP_K" default:"5"`
}

type ExtractorConfig struct {
	Timezone string `envconfig:"EXTRACTOR_TIMEZONE" default:"Asia/Kolkata"`
}

type BookingConfig struct {
	AccountsURL  string `envconfig:"ZOHO_ACCOUNTS_URL" default:"https://accounts.zoho.com"`
	CalendarURL  string `envconfig:"ZOHO_CALENDAR_URL" default:"https://calendar.zoho.com/api/v1"`
	ClientID     string `envconfig:"ZOHO_CLIENT_ID"`
	ClientSecret string `envconfig:"ZOHO_CLIENT_SECRET"`
	Timezone     string `envconfig:"BOOKING_TIMEZONE" default:"Asia/Kolkata"`
	TimeoutSecs  int    `envconfig:"BOOKING_TIMEOUT_SECS" default:"15"`
}

type IndexConfig struct {
	QdrantURL  string `envconfig:"QDRANT_URL" default:"http://localhost:6334"`
	QdrantKey  string `envconfig:"QDRANT_API_KEY"`
	Collection string `envconfig:"INDEX_COLLECTION" default:"documents"`
	Dimension  int    `envconfig:"INDEX_DIMENSION" default:"768"`
	EmbedModel string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`
}

type IngestConfig struct {
	ChunkSize    int `envconfig:"INGEST_CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"INGEST_CHUNK_OVERLAP" default:"200"`
}

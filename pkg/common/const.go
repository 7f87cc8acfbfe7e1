package common

// Cache keys.
const (
	KEY_HISTORY_SNAPSHOT = "history:snapshot"
	KEY_HISTORY_LATEST   = "history:latest:%d"
)

// Context and header keys shared by the HTTP layer.
const (
	HEADER_REQUEST_ID = "X-Request-ID"
	KEY_REQUEST_ID    = "request_id"
)

const (
	HISTORY_BACKEND_MEMORY   = "memory"
	HISTORY_BACKEND_FILE     = "file"
	HISTORY_BACKEND_POSTGRES = "postgres"
)

func GetHistoryBackendList() []string {
	return []string{
		HISTORY_BACKEND_MEMORY,
		HISTORY_BACKEND_FILE,
		HISTORY_BACKEND_POSTGRES,
	}
}

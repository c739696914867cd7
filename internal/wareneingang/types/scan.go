package types

type ScanRequest struct {
	SessionID int64  `json:"session_id"`
	Payload   string `json:"payload"`
}

// ScanResponse carries the outcome of one scan-save attempt. Status is one
// of "saved", "processing", "duplicate_cache", "duplicate_store",
// "duplicate_transaction", "error"; Record is set only for "saved".
type ScanResponse struct {
	Success    bool        `json:"success"`
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	Record     *ScanRecord `json:"record,omitempty"`
	ServerTime string      `json:"server_time"`
}

package types

// ReaderSymbolsRequest carries raw characters from the keyboard-wedge
// bridge. Symbols are fed to the decoder in order; decode outcomes surface
// on the event boundary, not in this response.
type ReaderSymbolsRequest struct {
	Symbols string `json:"symbols"`
}

type ReaderSymbolsResponse struct {
	OK         bool   `json:"ok"`
	ServerTime string `json:"server_time"`
}

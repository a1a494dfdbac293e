package domain

// RawDocument represents opaque bytes read from disk or fetched over HTTP.
// It is the ingestion input before normalisation.
type RawDocument struct {
	// URI is the original location (file path or URL).
	URI string

	// FileName is the base name used for display and type detection.
	FileName string

	// MIMEType is the content type when known (e.g., "text/html").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// SourceURL is set when the document was fetched over HTTP.
	SourceURL string
}

package tinify

// Command names understood by the service.
const (
	CommandResize    = "resize"
	CommandConvert   = "convert"
	CommandTransform = "transform"
	CommandPreserve  = "preserve"
	CommandStore     = "store"
)

// Resize methods.
const (
	MethodScale = "scale"
	MethodFit   = "fit"
	MethodCover = "cover"
	MethodThumb = "thumb"
)

// Metadata fields accepted by Preserve.
const (
	PreserveCopyright = "copyright"
	PreserveCreation  = "creation"
	PreserveLocation  = "location"
)

// ResizeOptions describes a resize. Scale needs exactly one of Width and
// Height; the other methods need both.
type ResizeOptions struct {
	Method string `json:"method,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ConvertOptions lists acceptable output media types, e.g. "image/webp".
// With several types, or "*/*", the service picks the smallest result.
type ConvertOptions struct {
	Type []string `json:"type"`
}

// TransformOptions describes a transformation.
type TransformOptions struct {
	Background string `json:"background,omitempty"`
}

// StoreOptions describes an external storage target.
type StoreOptions struct {
	Service string `json:"service"`

	// Amazon S3 and S3-compatible services.
	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty"`
	Region             string `json:"region,omitempty"`

	// Google Cloud Storage.
	GCPAccessToken string `json:"gcp_access_token,omitempty"`

	Path    string            `json:"path,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

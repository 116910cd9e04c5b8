package config

// S3Config holds the credentials and addressing for the S3-compatible
// object storage that receives avatar uploads.  BaseEndpoint is set when
// running against MinIO; left empty the SDK talks to AWS directly.
// PublicBaseURL is the externally reachable prefix stored on the user
// record, which may differ from the API endpoint when a CDN sits in front.
type S3Config struct {
	Region        string
	Bucket        string
	BaseEndpoint  string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// LoadS3Config reads environment variables to build an S3Config.  The
// bucket and credentials are required only when avatar upload is actually
// exercised, so they are read leniently here and validated by the storage
// constructor.
func LoadS3Config() S3Config {
	return S3Config{
		Region:        getenv("S3_REGION", "us-east-1"),
		Bucket:        getenv("S3_BUCKET", "avatars"),
		BaseEndpoint:  getenv("S3_ENDPOINT", ""),
		AccessKey:     getenv("S3_ACCESS_KEY", ""),
		SecretKey:     getenv("S3_SECRET_KEY", ""),
		PublicBaseURL: getenv("S3_PUBLIC_BASE_URL", ""),
	}
}

// internal/workers/infrastructure/build-response/config.go
package buildresponse

type Config struct {
	AppVersion string
	// ValidateOutput checks every DTO against the response schema.
	ValidateOutput bool
}

func LoadConfig() *Config {
	return &Config{
		AppVersion:     "dev",
		ValidateOutput: true,
	}
}

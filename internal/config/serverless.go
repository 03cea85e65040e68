package config

import (
	"os"
	"sync"
)

// Platform identifies the hosting target the process runs on
type Platform string

const (
	PlatformNetlify Platform = "netlify"
	PlatformVercel  Platform = "vercel"
	PlatformLambda  Platform = "lambda"
	PlatformServer  Platform = "server"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	Platform     Platform
	FunctionName string
	Region       string
	Stage        string
}

// Global serverless configuration
var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = detectServerless()
	})
	return serverlessConfig
}

func detectServerless() *ServerlessConfig {
	cfg := &ServerlessConfig{
		Platform:     DetectPlatform(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       GetEnv("AWS_REGION", os.Getenv("VERCEL_REGION")),
		Stage:        GetEnv("CONTEXT", GetEnv("VERCEL_ENV", "dev")),
	}
	return cfg
}

// DetectPlatform inspects the environment variables each host injects.
// Netlify runs Go functions on AWS Lambda, so its marker is checked first.
func DetectPlatform() Platform {
	switch {
	case GetEnvAsBool("NETLIFY", false) || os.Getenv("NETLIFY_IMAGES_CDN_DOMAIN") != "":
		return PlatformNetlify
	case os.Getenv("VERCEL") != "":
		return PlatformVercel
	case os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "":
		return PlatformLambda
	default:
		return PlatformServer
	}
}

// IsServerlessMode returns true if running as a function rather than the dev server
func IsServerlessMode() bool {
	return GetServerlessConfig().Platform != PlatformServer
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

package core

import "github.com/arnavsurve/smokeshot/pkg/types"

type CheckResultsContext = map[string]types.CheckResult

type Input struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`
	Secret   bool   `yaml:"secret,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

// TargetConfig is the web application under verification.
type TargetConfig struct {
	URL               string `yaml:"url"`
	NavigationTimeout string `yaml:"navigation_timeout,omitempty"`
}

type BrowserConfig struct {
	Engine   string `yaml:"engine,omitempty"`
	Headless *bool  `yaml:"headless,omitempty"`
}

// ArtifactsConfig says where evidence is written. Success, Error and Report
// are relative to Dir unless absolute.
type ArtifactsConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	Success  string `yaml:"success,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Report   string `yaml:"report,omitempty"`
	FullPage *bool  `yaml:"full_page,omitempty"`
}

// PublishConfig enables uploading evidence to an S3-compatible bucket.
type PublishConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	UsePathStyle    bool   `yaml:"use_path_style,omitempty"`
}

type Config struct {
	Name             string          `yaml:"name"`
	Description      string          `yaml:"description,omitempty"`
	Inputs           []Input         `yaml:"inputs,omitempty"`
	Target           TargetConfig    `yaml:"target"`
	AssertionTimeout string          `yaml:"assertion_timeout,omitempty"`
	Browser          BrowserConfig   `yaml:"browser,omitempty"`
	Artifacts        ArtifactsConfig `yaml:"artifacts,omitempty"`
	Publish          *PublishConfig  `yaml:"publish,omitempty"`
	Checks           []Check         `yaml:"checks"`
}

type Check = types.Check
type HTTPCall = types.HTTPCall
type ExecutionContext = types.ExecutionContext
type Level = types.Level
type Logger = types.Logger

// Level constants
const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

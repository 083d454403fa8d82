// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Int type for integer settings
	Int SettingType = "int"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Env is the environment variable name for the setting
	Env string
	// Required indicates whether the setting is required
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the server listens",
		Type:    String,
		Default: ":8080",
		Env:     "SERVER_ADDR",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
		Env:     "METRICS_ADDR",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
		Env:     "SHUTDOWN_TIMEOUT",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Enable TLS for the server",
		Type:    Bool,
		Default: false,
		Env:     "TLS_ENABLED",
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
		Env:     "TLS_CERT_PATH",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
		Env:     "TLS_KEY_PATH",
	},
	{
		Name:    "TLS_CA_PATH",
		Short:   "Path to TLS CA certificate file",
		Type:    String,
		Default: "",
		Env:     "TLS_CA_PATH",
	},

	// Membership store
	{
		Name:    "STORE_TYPE",
		Short:   "Membership store backend (postgres, fixture)",
		Type:    String,
		Default: StoreTypePostgres,
		Env:     "STORE_TYPE",
	},
	{
		Name:     "STORE_DSN",
		Short:    "Postgres connection string for the membership store",
		Type:     String,
		Default:  "",
		Env:      "STORE_DSN",
		Required: true,
	},

	// Authorization
	{
		Name:    "AUTHZ_ADMIN_SEARCH_ROLE",
		Short:   "Role marker enabling the admin read override",
		Type:    String,
		Default: "/admin/acsp/search",
		Env:     "AUTHZ_ADMIN_SEARCH_ROLE",
	},
	{
		Name:    "AUTHZ_INTERNAL_KEY_ROLE",
		Short:   "Role marker required of internal service callers",
		Type:    String,
		Default: "*",
		Env:     "AUTHZ_INTERNAL_KEY_ROLE",
	},
	{
		Name:    "AUTHZ_LOOKUP_TIMEOUT",
		Short:   "Timeout for membership store lookups",
		Type:    String,
		Default: "5s",
		Env:     "AUTHZ_LOOKUP_TIMEOUT",
	},

	// Notification provider
	{
		Name:    "NOTIFY_URL",
		Short:   "Notification provider endpoint",
		Type:    String,
		Default: "",
		Env:     "NOTIFY_URL",
	},
	{
		Name:    "NOTIFY_API_KEY",
		Short:   "Notification provider API key",
		Type:    String,
		Default: "",
		Env:     "NOTIFY_API_KEY",
	},
	{
		Name:    "NOTIFY_TIMEOUT",
		Short:   "Timeout for notification provider calls",
		Type:    String,
		Default: "10s",
		Env:     "NOTIFY_TIMEOUT",
	},

	// Rate limiting
	{
		Name:    "RATE_LIMIT_ENABLED",
		Short:   "Enable per-IP rate limiting",
		Type:    Bool,
		Default: true,
		Env:     "RATE_LIMIT_ENABLED",
	},
	{
		Name:    "RATE_LIMIT_BURST",
		Short:   "Rate limit token bucket size",
		Type:    Int,
		Default: 50,
		Env:     "RATE_LIMIT_BURST",
	},
	{
		Name:    "RATE_LIMIT_PER_SECOND",
		Short:   "Rate limit refill rate per second",
		Type:    Int,
		Default: 25,
		Env:     "RATE_LIMIT_PER_SECOND",
	},

	// Observability
	{
		Name:    "LOG_LEVEL",
		Short:   "Logging level",
		Type:    String,
		Default: "info",
		Env:     "LOG_LEVEL",
	},
}

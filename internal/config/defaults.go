package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Agent    AgentConfig    `json:"agent" yaml:"agent"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Skills   SkillsConfig   `json:"skills" yaml:"skills"`
	UI       UIConfig       `json:"ui" yaml:"ui"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

type AgentConfig struct {
	Name              string   `json:"name" yaml:"name"`                             // Default: "ANU"
	SystemInstruction string   `json:"system_instruction" yaml:"system_instruction"` // Default: see defaultSystemInstruction
	MaxIterations     int      `json:"max_iterations" yaml:"max_iterations"`         // Default: 10
	ContextMessages   int      `json:"context_messages" yaml:"context_messages"`     // Default: 6
	MaxOutputTokens   int      `json:"max_output_tokens" yaml:"max_output_tokens"`   // Default: 200
	Temperature       float32  `json:"temperature" yaml:"temperature"`               // Default: 0.7
	WakeWords         []string `json:"wake_words" yaml:"wake_words"`                 // Default: direct-command words; the name always wakes
}

type ProviderConfig struct {
	Name           string `json:"name" yaml:"name"`                       // "gemini" or "groq". Default: "gemini"
	Model          string `json:"model" yaml:"model"`                     // Default: provider specific
	BaseURL        string `json:"base_url" yaml:"base_url"`               // Groq only
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"` // Default: 60
}

type HistoryConfig struct {
	Path        string `json:"path" yaml:"path"`                 // Default: <config dir>/conversation_history.json
	MaxMessages int    `json:"max_messages" yaml:"max_messages"` // Default: 100
}

type SkillsConfig struct {
	// Enabled lists skill identifiers to load, in order.
	Enabled []string `json:"enabled" yaml:"enabled"`

	Reminders RemindersConfig `json:"reminders" yaml:"reminders"`
	Text      TextConfig      `json:"text" yaml:"text"`
	System    SystemConfig    `json:"system" yaml:"system"`
	Weather   WeatherConfig   `json:"weather" yaml:"weather"`
	Email     EmailConfig     `json:"email" yaml:"email"`
}

type RemindersConfig struct {
	DBPath       string `json:"db_path" yaml:"db_path"`             // Default: <config dir>/reminders.db
	PollSeconds  int    `json:"poll_seconds" yaml:"poll_seconds"`   // Default: 30
	DefaultDelay int    `json:"default_delay" yaml:"default_delay"` // Default: 60 (minutes)
}

type TextConfig struct {
	MaxFileSize int64    `json:"max_file_size" yaml:"max_file_size"` // Default: 2 * 1024 * 1024
	MaxChars    int      `json:"max_chars" yaml:"max_chars"`         // Default: 5000
	Deny        []string `json:"deny" yaml:"deny"`                   // gitignore-syntax patterns never read
	IgnoreFile  string   `json:"ignore_file" yaml:"ignore_file"`     // Default: <config dir>/textignore
}

type SystemConfig struct {
	CommandTimeoutSeconds int   `json:"command_timeout_seconds" yaml:"command_timeout_seconds"` // Default: 10
	MaxOutputSize         int64 `json:"max_output_size" yaml:"max_output_size"`                 // Default: 64 * 1024
}

type WeatherConfig struct {
	DefaultCity string `json:"default_city" yaml:"default_city"` // Default: "Mumbai"
	Units       string `json:"units" yaml:"units"`               // Default: "metric"
	BaseURL     string `json:"base_url" yaml:"base_url"`         // Default: OpenWeatherMap
	LocationURL string `json:"location_url" yaml:"location_url"` // Default: ipinfo.io
	APIKeyEnv   string `json:"api_key_env" yaml:"api_key_env"`   // Default: "OPENWEATHERMAP_API_KEY"
}

type EmailConfig struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"` // Default: 993
	Username    string `json:"username" yaml:"username"`
	PasswordEnv string `json:"password_env" yaml:"password_env"` // Default: "EMAIL_PASSWORD"
	Insecure    bool   `json:"insecure" yaml:"insecure"`         // plain TCP, for local bridges
	Mailbox     string `json:"mailbox" yaml:"mailbox"`           // Default: "INBOX"
}

type UIConfig struct {
	TickIntervalMs int    `json:"tick_interval_ms" yaml:"tick_interval_ms"` // Default: 100
	ColorPrimary   string `json:"color_primary" yaml:"color_primary"`       // Default: "39"
	ColorSecondary string `json:"color_secondary" yaml:"color_secondary"`   // Default: "86"
	ColorMuted     string `json:"color_muted" yaml:"color_muted"`           // Default: "243"
	ColorAlert     string `json:"color_alert" yaml:"color_alert"`           // Default: "203"
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // Default: "info"
	File  string `json:"file" yaml:"file"`   // Default: <config dir>/anu.log
}

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// DefaultSkills is the load order used when no skills are configured.
var DefaultSkills = []string{
	"system",
	"calculator",
	"fun",
	"reminders",
	"text",
	"clipboard",
	"weather",
	"email",
	"conversation",
}

const defaultSystemInstruction = `You are ANU, a helpful personal assistant running on the user's computer.
Keep answers short and conversational because they may be spoken aloud.
Use the available tools whenever they can answer a question or perform an action, and never invent tool results.`

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:              "ANU",
			SystemInstruction: defaultSystemInstruction,
			MaxIterations:     10,
			ContextMessages:   6,
			MaxOutputTokens:   200,
			Temperature:       0.7,
			WakeWords: []string{
				"open", "volume", "search", "create", "write", "read", "make",
				"who", "what", "when", "where", "how", "why", "thank", "hello", "hi",
				"import", "add", "send", "message", "list", "show", "tell", "play",
				"set", "check", "calculate", "remind", "clear", "copy", "convert",
			},
		},
		Provider: ProviderConfig{
			Name:           ProviderGemini,
			TimeoutSeconds: 60,
		},
		History: HistoryConfig{
			MaxMessages: 100,
		},
		Skills: SkillsConfig{
			Enabled: append([]string(nil), DefaultSkills...),
			Reminders: RemindersConfig{
				PollSeconds:  30,
				DefaultDelay: 60,
			},
			Text: TextConfig{
				MaxFileSize: 2 * 1024 * 1024,
				MaxChars:    5000,
				Deny:        []string{".ssh/", ".gnupg/", ".aws/", "*.pem", "*.key", ".env", "id_rsa*", "id_ed25519*"},
			},
			System: SystemConfig{
				CommandTimeoutSeconds: 10,
				MaxOutputSize:         64 * 1024,
			},
			Weather: WeatherConfig{
				DefaultCity: "Mumbai",
				Units:       "metric",
				BaseURL:     "https://api.openweathermap.org/data/2.5/weather",
				LocationURL: "https://ipinfo.io/json",
				APIKeyEnv:   "OPENWEATHERMAP_API_KEY",
			},
			Email: EmailConfig{
				Port:        993,
				PasswordEnv: "EMAIL_PASSWORD",
				Mailbox:     "INBOX",
			},
		},
		UI: UIConfig{
			TickIntervalMs: 100,
			ColorPrimary:   "39",
			ColorSecondary: "86",
			ColorMuted:     "243",
			ColorAlert:     "203",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (p ProviderConfig) APIKeyEnv() string {
	if p.Name == ProviderGroq {
		return "GROQ_API_KEY"
	}
	return "GEMINI_API_KEY"
}

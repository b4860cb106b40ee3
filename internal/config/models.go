package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StoreConfig represents the classification store configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// SourceConfig represents the message source configuration
type SourceConfig struct {
	Type            string
	CredentialsFile string
	Query           string
}

// ContactsConfig represents the contacts directory configuration
type ContactsConfig struct {
	Enabled         bool
	CredentialsFile string
}

// SenderConfig holds extensions to the built-in domain reputation lists
type SenderConfig struct {
	CriticalDomains []string
	BillingDomains  []string
	BulkDomains     []string
}

// TriageConfig holds the triage engine tuning knobs
type TriageConfig struct {
	BatchFloor        int
	BatchCeiling      int
	GapFillPage       int
	GapFillCap        int
	StaleRecheckCap   int
	BackgroundWorkers int
	DefaultLimit      int
	Users             []string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetStore returns the classification store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetSource returns the message source configuration
func (c *Config) GetSource() SourceConfig {
	return SourceConfig{
		Type:            c.GetString("source.type"),
		CredentialsFile: c.GetString("source.credentials_file"),
		Query:           c.GetString("source.query"),
	}
}

// GetContacts returns the contacts directory configuration
func (c *Config) GetContacts() ContactsConfig {
	return ContactsConfig{
		Enabled:         c.GetBool("contacts.enabled"),
		CredentialsFile: c.GetString("contacts.credentials_file"),
	}
}

// GetSender returns the sender reputation list extensions
func (c *Config) GetSender() SenderConfig {
	return SenderConfig{
		CriticalDomains: c.GetStringSlice("sender.critical_domains"),
		BillingDomains:  c.GetStringSlice("sender.billing_domains"),
		BulkDomains:     c.GetStringSlice("sender.bulk_domains"),
	}
}

// GetTriage returns the triage engine tuning configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		BatchFloor:        c.GetInt("triage.batch_floor"),
		BatchCeiling:      c.GetInt("triage.batch_ceiling"),
		GapFillPage:       c.GetInt("triage.gap_fill_page"),
		GapFillCap:        c.GetInt("triage.gap_fill_cap"),
		StaleRecheckCap:   c.GetInt("triage.stale_recheck_cap"),
		BackgroundWorkers: c.GetInt("triage.background_workers"),
		DefaultLimit:      c.GetInt("triage.default_limit"),
		Users:             c.GetStringSlice("triage.users"),
	}
}

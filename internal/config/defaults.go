package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	locators := true
	testData := true
	return &Config{
		Input: InputConfig{
			Dialect:   "naive",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Locators:       &locators,
			TestData:       &testData,
			Representative: "first",
		},
		Environments: EnvironmentConfig{
			ScreenshotRoot: "__screenshots__",
			TimeoutMs:      30000,
		},
		Templates: TemplateConfig{
			Directory: "",
		},
		Server: ServerConfig{
			Name:    "UI Test Gen MCP Server",
			Version: "1.0.0",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

package models

type GlobalConfig struct {
	Tools       ToolsConfig       `toml:"tools" json:"tools"`
	Maintenance MaintenanceConfig `toml:"maintenance" json:"maintenance"`
	Restore     RestoreConfig     `toml:"restore" json:"restore"`
	Docker      DockerConfig      `toml:"docker" json:"docker"`
	Log         LogConfig         `toml:"log" json:"log"`
}

type ToolsConfig struct {
	MySQLDump string `toml:"mysqldump" json:"mysqldump"`
	MySQL     string `toml:"mysql" json:"mysql"`
	PHP       string `toml:"php" json:"php"`
	Tar       string `toml:"tar" json:"tar"`
}

type MaintenanceConfig struct {
	Message string `toml:"message" json:"message"`
	Lock    bool   `toml:"lock" json:"lock"`
}

type RestoreConfig struct {
	StagingRoot string `toml:"staging_root" json:"staging_root"`
}

type DockerConfig struct {
	DBContainer string `toml:"db_container" json:"db_container"`
}

type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Tools: ToolsConfig{
			MySQLDump: "mysqldump",
			MySQL:     "mysql",
			PHP:       "php",
			Tar:       "tar",
		},
		Maintenance: MaintenanceConfig{
			Message: "Dumping Database, Access will be restored shortly",
			Lock:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Fill replaces empty values with their defaults.
func (c *GlobalConfig) Fill() {
	d := DefaultGlobalConfig()
	if c.Tools.MySQLDump == "" {
		c.Tools.MySQLDump = d.Tools.MySQLDump
	}
	if c.Tools.MySQL == "" {
		c.Tools.MySQL = d.Tools.MySQL
	}
	if c.Tools.PHP == "" {
		c.Tools.PHP = d.Tools.PHP
	}
	if c.Tools.Tar == "" {
		c.Tools.Tar = d.Tools.Tar
	}
	if c.Maintenance.Message == "" {
		c.Maintenance.Message = d.Maintenance.Message
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

package model

// Capability names checked before a staff member may resolve an entity.
const (
	CapabilityResolveReports  = "resolve_reports"
	CapabilityResolveRequests = "resolve_requests"
)

// PermissionGrant maps a guild role to a named staff capability.
type PermissionGrant struct {
	GuildID    string `db:"guild_id"`
	Capability string `db:"capability"`
	RoleID     string `db:"role_id"`
}

// GuildConfig holds the moderation configuration for a single guild.
// One row exists per known guild; absent guilds get a default-valued row on
// first access.
type GuildConfig struct {
	GuildID              string `db:"guild_id"`
	RequireReasonReport  bool   `db:"require_reason_report"`
	RequireReasonRequest bool   `db:"require_reason_request"`
	MuteRoleID           string `db:"mute_role_id"`
	AlertChannelID       string `db:"alert_channel_id"`
	LogChannelID         string `db:"log_channel_id"`

	Grants []PermissionGrant `db:"-"`
}

// GrantedRoles returns the role IDs granted the given capability.
func (c *GuildConfig) GrantedRoles(capability string) []string {
	var roles []string
	for _, g := range c.Grants {
		if g.Capability == capability {
			roles = append(roles, g.RoleID)
		}
	}
	return roles
}

// Config stores the process-level application configuration.
type Config struct {
	BotToken string
	AppID    string
	LogLevel string
	DataDir  string
	DBPath   string

	Scheduler  SchedulerConfig
	Resolution ResolutionConfig
}

// SchedulerConfig controls the expiry scan loop.
type SchedulerConfig struct {
	Interval  string `mapstructure:"interval"`
	BatchSize int    `mapstructure:"batch_size"`
}

// ResolutionConfig controls stale-alert cleanup behavior. The grace delay is
// how long a stale alert survives after a not-found resolution attempt; it
// can be overridden per entity kind.
type ResolutionConfig struct {
	GraceDelay        string            `mapstructure:"grace_delay"`
	GraceDelayPerKind map[string]string `mapstructure:"grace_delay_per_kind"`
}

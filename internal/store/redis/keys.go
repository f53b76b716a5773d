package redis

const (
	// KeyWhitelist holds the JSON array of whitelisted domains.
	KeyWhitelist = "phishguard:whitelist"
	// KeyThresholds holds the JSON threshold config + active profile.
	KeyThresholds = "phishguard:thresholds"
	// KeyCounters holds the JSON running counters.
	KeyCounters = "phishguard:counters"
)

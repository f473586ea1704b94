package models

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

const (
	ServiceMassage = "massage"
	ServiceLaser   = "laser"
	ServiceAll     = "all"
)

// Cache keys for the persistent key-value surface: one key per entity plus
// one key holding the per-entity last-write timestamps.
const (
	CacheKeyBookings   = "salon_bookings"
	CacheKeyProcedures = "salon_procedures"
	CacheKeyClients    = "salon_clients"
	CacheKeySettings   = "salon_settings"
	CacheKeyTimestamps = "salon_cache_timestamp"
)

const (
	// CacheValiditySeconds окно свежести кэша
	CacheValiditySeconds = 5 * 60

	// DefaultSlotDuration длительность процедуры в минутах
	DefaultSlotDuration = 60

	// DefaultWorkStart / DefaultWorkEnd рабочие часы по умолчанию
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "21:00"

	// ArchiveSweepSchedule период архивирования прошедших записей
	ArchiveSweepSchedule = "@every 1m"
)

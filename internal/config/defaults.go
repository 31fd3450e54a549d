package config

const (
	defaultWorkspaceDir = "~/.local/share/bipv"
	defaultLogDir       = "~/.local/share/bipv/logs"
	defaultReportDir    = "~/.local/share/bipv/reports"

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60

	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120

	// Central European reference site; overridden per installation.
	defaultLatitude            = 52.52
	defaultLongitude           = 13.405
	defaultAltitude            = 34.0
	defaultTimezoneOffsetHours = 1
	defaultAlbedo              = 0.2
	defaultMeanAirTempC        = 10.5
	defaultMeanHumidityPercent = 72.0

	defaultImportRate       = 0.32
	defaultFeedInTariff     = 0.08
	defaultAnnualEscalation = 0.025

	defaultDiscountRate    = 0.04
	defaultAnalysisYears   = 25
	defaultOMRate          = 0.01
	defaultDegradationRate = 0.005

	defaultPerformanceRatio  = 0.80
	defaultMinElementArea    = 0.5
	defaultDefaultGlassRatio = 0.9
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			LogDir:       defaultLogDir,
			ReportDir:    defaultReportDir,
		},
		Site: Site{
			Latitude:            defaultLatitude,
			Longitude:           defaultLongitude,
			Altitude:            defaultAltitude,
			TimezoneOffsetHours: defaultTimezoneOffsetHours,
			Albedo:              defaultAlbedo,
			MeanAirTempC:        defaultMeanAirTempC,
			MeanHumidityPercent: defaultMeanHumidityPercent,
		},
		Electricity: Electricity{
			ImportRate:       defaultImportRate,
			FeedInTariff:     defaultFeedInTariff,
			AnnualEscalation: defaultAnnualEscalation,
		},
		Finance: Finance{
			DiscountRate:    defaultDiscountRate,
			AnalysisYears:   defaultAnalysisYears,
			OMRate:          defaultOMRate,
			DegradationRate: defaultDegradationRate,
		},
		PV: PV{
			PerformanceRatio:  defaultPerformanceRatio,
			MinElementArea:    defaultMinElementArea,
			IncludeNorth:      false,
			DefaultGlassRatio: defaultDefaultGlassRatio,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

package backend

import (
	"fmt"
	"time"

	"lexify/internal/calendar"
	"lexify/internal/config"
	"lexify/internal/sheets"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	mirror := MirrorType(appConfig.MirrorBackend)
	if !mirror.IsValid() {
		return Config{}, fmt.Errorf("invalid mirror type in config: %s", appConfig.MirrorBackend)
	}

	loc, err := appConfig.Location()
	if err != nil {
		return Config{}, fmt.Errorf("resolve timezone: %w", err)
	}
	labels, err := appConfig.Labels()
	if err != nil {
		return Config{}, fmt.Errorf("resolve locale: %w", err)
	}

	return Config{
		DBPath:   appConfig.DBPath,
		Location: loc,
		Labels:   labels,

		Workers:      appConfig.Workers,
		DayCacheSize: appConfig.DayCacheSize,
		DayCacheTTL:  appConfig.DayCacheTTL,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Mirror:                   mirror,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		SheetNames: sheets.Names{
			Tasks:    appConfig.SheetTasks,
			Incomes:  appConfig.SheetIncome,
			Expenses: appConfig.SheetExpenses,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror type: %s", c.Mirror)
	}
	if c.Mirror == SheetsMirror {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets mirror")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets mirror")
		}
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 4
	}
	return c.Workers
}

func (c Config) cacheSize() int {
	if c.DayCacheSize < 1 {
		return 64
	}
	return c.DayCacheSize
}

func (c Config) cacheTTL() time.Duration {
	if c.DayCacheTTL <= 0 {
		return 5 * time.Minute
	}
	return c.DayCacheTTL
}

func (c Config) labels() calendar.Labels {
	if c.Labels == (calendar.Labels{}) {
		return calendar.LabelsEN
	}
	return c.Labels
}

// GetMirrorTypes returns all valid mirror types
func GetMirrorTypes() []MirrorType {
	return []MirrorType{MemoryMirror, SheetsMirror}
}

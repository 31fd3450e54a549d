package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateElectricity(); err != nil {
		return err
	}
	if err := c.validateFinance(); err != nil {
		return err
	}
	if err := c.validatePV(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSite() error {
	if c.Site.Latitude < -90 || c.Site.Latitude > 90 {
		return errors.New("site.latitude must be between -90 and 90")
	}
	if c.Site.Longitude < -180 || c.Site.Longitude > 180 {
		return errors.New("site.longitude must be between -180 and 180")
	}
	if c.Site.TimezoneOffsetHours < -12 || c.Site.TimezoneOffsetHours > 14 {
		return errors.New("site.timezone_offset_hours must be between -12 and 14")
	}
	if c.Site.Albedo < 0 || c.Site.Albedo > 1 {
		return errors.New("site.albedo must be between 0 and 1")
	}
	if c.Site.MeanHumidityPercent < 0 || c.Site.MeanHumidityPercent > 100 {
		return errors.New("site.mean_humidity_percent must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateElectricity() error {
	if c.Electricity.ImportRate <= 0 {
		return errors.New("electricity.import_rate must be positive")
	}
	if c.Electricity.FeedInTariff < 0 {
		return errors.New("electricity.feed_in_tariff must not be negative")
	}
	if c.Electricity.AnnualEscalation < -1 || c.Electricity.AnnualEscalation > 1 {
		return errors.New("electricity.annual_escalation must be a fraction between -1 and 1")
	}
	return nil
}

func (c *Config) validateFinance() error {
	if c.Finance.DiscountRate < 0 || c.Finance.DiscountRate > 1 {
		return errors.New("finance.discount_rate must be a fraction between 0 and 1")
	}
	if c.Finance.AnalysisYears <= 0 {
		return errors.New("finance.analysis_years must be positive")
	}
	if c.Finance.OMRate < 0 || c.Finance.OMRate > 1 {
		return errors.New("finance.om_rate must be a fraction between 0 and 1")
	}
	if c.Finance.DegradationRate < 0 || c.Finance.DegradationRate > 0.1 {
		return errors.New("finance.degradation_rate must be a fraction between 0 and 0.1")
	}
	if c.Finance.Budget < 0 {
		return errors.New("finance.budget must not be negative")
	}
	return nil
}

func (c *Config) validatePV() error {
	if c.PV.PerformanceRatio <= 0 || c.PV.PerformanceRatio > 1 {
		return errors.New("pv.performance_ratio must be between 0 and 1")
	}
	if c.PV.DefaultGlassRatio <= 0 || c.PV.DefaultGlassRatio > 1 {
		return errors.New("pv.default_glass_ratio must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalguard/vitalguard/internal/alert"
	"github.com/vitalguard/vitalguard/internal/config"
	"github.com/vitalguard/vitalguard/internal/logger"
	"github.com/vitalguard/vitalguard/internal/monitor"
	"github.com/vitalguard/vitalguard/internal/pid"
	"github.com/vitalguard/vitalguard/internal/sample"
	"github.com/vitalguard/vitalguard/internal/source"
	"github.com/vitalguard/vitalguard/internal/telemetry"
)

var (
	cfg *config.Config
	mon *monitor.Monitor
	tel telemetry.Collector
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	var err error
	tel, err = telemetry.NewService(telemetry.Config{
		DBPath:  cfg.TelemetryDB,
		Enabled: cfg.Telemetry,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer tel.Close()

	adapter := source.NewAdapter()
	adapter.Configure(source.Config{
		Endpoint:        cfg.Endpoint,
		APIKey:          cfg.APIKey,
		PollingInterval: time.Duration(cfg.PollingInterval) * time.Millisecond,
		RetryAttempts:   cfg.RetryAttempts,
		RetryDelay:      time.Duration(cfg.RetryDelay) * time.Millisecond,
	})

	mon = monitor.New(monitor.Config{
		DistressEnabled:    cfg.DistressEnabled,
		FallEnabled:        cfg.FallEnabled,
		HeartRateThreshold: cfg.HeartRateThreshold,
		CountdownSeconds:   cfg.CountdownSeconds,
	}, adapter, alert.NotifierFunc(notifyEmergencyContact))

	// Side listeners ride the same fan-out as the monitor's own handler.
	unsubLog := adapter.Subscribe(logVitalSample)
	defer unsubLog()
	unsubTel := adapter.Subscribe(recordTelemetry)
	defer unsubTel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	mon.Start()

	<-ctx.Done()

	mon.Stop()
	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// notifyEmergencyContact is the boundary to the external notification
// channel. Dispatching the actual call/SMS lives outside this daemon; the
// contract ends at handing over the confirmed alert.
func notifyEmergencyContact(a alert.Alert) {
	logger.Warn().
		Str("alert_id", a.ID).
		Str("kind", string(a.Kind)).
		Str("severity", a.Severity.String()).
		Time("created_at", a.CreatedAt).
		Msg("Escalating confirmed alert to emergency contact")
}

func logVitalSample(v sample.VitalSample) {
	status := mon.SourceStatus()

	logger.Info().
		Float64("heart_rate", v.HeartRate).
		Float64("hrv", v.HRV).
		Float64("battery", v.Battery).
		Int("retry_count", status.RetryCount).
		Bool("alert_active", mon.ActiveAlert() != nil).
		Msg("")
}

func recordTelemetry(v sample.VitalSample) {
	snapshot := &telemetry.Snapshot{
		Timestamp: v.Timestamp,
		Vitals: telemetry.VitalMetrics{
			HeartRate: v.HeartRate,
			HRV:       v.HRV,
			Battery:   v.Battery,
		},
		SystemState: telemetry.StateMetrics{
			Monitoring:  mon.Monitoring(),
			AlertActive: mon.ActiveAlert() != nil,
		},
	}
	if latest := mon.LatestMotion(); latest != nil {
		snapshot.Motion.TotalAcceleration = latest.TotalAcceleration
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tel.Record(ctx, snapshot); err != nil {
		logger.Error().Err(err).Msg("failed to record telemetry")
	}
}

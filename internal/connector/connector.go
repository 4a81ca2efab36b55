// Package connector establishes the runtime connection and makes sure the
// application is registered to start with the runtime.
package connector

import (
	"log/slog"

	"github.com/loykin/vrhook/internal/detector"
	"github.com/loykin/vrhook/internal/metrics"
	"github.com/loykin/vrhook/internal/openvr"
)

// Connector initializes an overlay connection to the runtime.
type Connector struct {
	Runtime      openvr.Runtime
	AppKey       string
	ManifestPath string
	Logger       *slog.Logger
	// Probe, when set, is consulted after a failed attempt so the log says
	// whether the runtime is running at all.
	Probe detector.Detector
}

// Connect makes one connection attempt. A nil error means the runtime is
// connected; registration problems after that are logged only.
func (c *Connector) Connect() error {
	metrics.IncConnectAttempt()
	if err := c.Runtime.Init(openvr.ApplicationOverlay); err != nil {
		metrics.IncConnectFailure()
		c.Logger.Error("runtime connection failed", "error", err)
		c.logProbe()
		return err
	}
	c.Logger.Info("runtime connected")
	c.ensureRegistered()
	return nil
}

func (c *Connector) ensureRegistered() {
	if c.Runtime.IsApplicationInstalled(c.AppKey) {
		c.Logger.Info("application already registered", "app_key", c.AppKey)
		return
	}
	if err := c.Runtime.AddApplicationManifest(c.ManifestPath, false); err != nil {
		c.Logger.Error("failed to add application manifest", "manifest", c.ManifestPath, "error", err)
	} else {
		c.Logger.Info("application manifest added", "manifest", c.ManifestPath)
	}
	if err := c.Runtime.SetApplicationAutoLaunch(c.AppKey, true); err != nil {
		c.Logger.Error("failed to enable auto launch", "app_key", c.AppKey, "error", err)
		return
	}
	c.Logger.Info("auto launch enabled", "app_key", c.AppKey)
}

func (c *Connector) logProbe() {
	if c.Probe == nil {
		return
	}
	alive, err := c.Probe.Alive()
	switch {
	case err != nil:
		c.Logger.Debug("runtime probe failed", "probe", c.Probe.Describe(), "error", err)
	case alive:
		c.Logger.Info("runtime process is running", "probe", c.Probe.Describe())
	default:
		c.Logger.Info("runtime process not running", "probe", c.Probe.Describe())
	}
}

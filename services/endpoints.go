// services/endpoints.go
package services

import (
	"strings"

	"web3-dashboard/config"
	"web3-dashboard/models"
)

// Endpoints holds the base URLs of every API the dashboard talks to.
type Endpoints struct {
	// DashboardAPIURL and SagaAPIURL are the remote bases used by the
	// user-data client.
	DashboardAPIURL string
	SagaAPIURL      string

	// SepoliaExternalURL and SagaExternalURL are the upstreams of the local
	// proxy routes.
	SepoliaExternalURL string
	SagaExternalURL    string
	UseExternalAPI     bool

	LocalAPIURL string
	BackendURL  string
}

func EndpointsFromConfig(cfg *config.Config) Endpoints {
	return Endpoints{
		DashboardAPIURL:    cfg.DashboardAPIURL,
		SagaAPIURL:         cfg.SagaAPIURL,
		SepoliaExternalURL: cfg.SepoliaExternalAPIURL,
		SagaExternalURL:    cfg.SagaExternalAPIURL,
		UseExternalAPI:     cfg.UseExternalAPI,
		LocalAPIURL:        cfg.LocalAPIURL,
		BackendURL:         cfg.BackendURL,
	}
}

// RemoteBase is the user-data API base for network.
func (e Endpoints) RemoteBase(network models.Network) string {
	if network == models.NetworkSaga {
		return e.SagaAPIURL
	}
	return e.DashboardAPIURL
}

// ExternalBase is the proxy upstream for network.
func (e Endpoints) ExternalBase(network models.Network) string {
	if network == models.NetworkSaga {
		return e.SagaExternalURL
	}
	return e.SepoliaExternalURL
}

// joinURL appends path to base with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

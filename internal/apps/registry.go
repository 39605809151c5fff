package apps

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vocalia/vocalia-backend/pkg/access"
)

// AppConfig describes one registered frontend app (marketing/client site or
// the dashboard). Origins double as the CORS allow-list.
type AppConfig struct {
	AppID            string `json:"app_id"`
	AppName          string `json:"app_name"`
	Origin           string `json:"origin"`
	LoginPath        string `json:"login_path"`
	HomePath         string `json:"home_path"`
	EnforceAdminRole bool   `json:"enforce_admin_role"`
}

type AppsFile struct {
	Apps []AppConfig `json:"apps"`
}

type Registry struct {
	mu    sync.RWMutex
	apps  map[string]*AppConfig
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		apps: make(map[string]*AppConfig),
	}
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read apps config: %w", err)
	}

	var file AppsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse apps config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Apps {
		registry.Register(&file.Apps[i])
	}
	return registry, nil
}

func (r *Registry) Register(cfg *AppConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[cfg.AppID]; !ok {
		r.order = append(r.order, cfg.AppID)
	}
	r.apps[cfg.AppID] = cfg
}

func (r *Registry) Get(appID string) *AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apps[appID]
}

func (r *Registry) Exists(appID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.apps[appID]
	return ok
}

// Default returns the first registered app. Requests that carry no app
// identification are attributed to it.
func (r *Registry) Default() *AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil
	}
	return r.apps[r.order[0]]
}

// ByOrigin matches a request Origin header to a registered app.
func (r *Registry) ByOrigin(origin string) *AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if r.apps[id].Origin == origin {
			return r.apps[id]
		}
	}
	return nil
}

func (r *Registry) All() []*AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*AppConfig, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.apps[id])
	}
	return result
}

// CORSOrigins joins all registered origins into a Fiber allow-list.
func (r *Registry) CORSOrigins() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	origins := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if o := r.apps[id].Origin; o != "" {
			origins = append(origins, o)
		}
	}
	return strings.Join(origins, ",")
}

// PolicyFor specializes a route policy for one app: redirect paths come
// from the app config, and apps that opted out of client-side role checks
// get RequireAdmin stripped. The dashboard app leaves role enforcement to
// the individual admin endpoints; checking it in the guard caused redirect
// loops when the role claim lagged behind session resolution.
func (r *Registry) PolicyFor(appID string, p access.Policy) access.Policy {
	cfg := r.Get(appID)
	if cfg == nil {
		cfg = r.Default()
	}
	if cfg == nil {
		return p
	}
	if cfg.LoginPath != "" {
		p.LoginPath = cfg.LoginPath
	}
	if cfg.HomePath != "" {
		p.HomePath = cfg.HomePath
	}
	if !cfg.EnforceAdminRole {
		p.RequireAdmin = false
	}
	return p
}

package models

// PredictionResponse is the body of a successful /predict call
type PredictionResponse struct {
	Probability string `json:"probability" yaml:"probability"`
	RiskLevel   string `json:"risk_level" yaml:"risk_level"`
	Prediction  int    `json:"prediction" yaml:"prediction"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse describes the running service and its model
type InfoResponse struct {
	Version      string              `json:"version"`
	ModelLoaded  bool                `json:"model_loaded"`
	ModelKind    string              `json:"model_kind,omitempty"`
	Features     []string            `json:"features"`
	Categories   map[string][]string `json:"categories"`
	CacheEnabled bool                `json:"cache_enabled"`
}

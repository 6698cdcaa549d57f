package models

// CaseResponse is the success envelope returned by mutating endpoints
type CaseResponse struct {
	Success  bool  `json:"success"`
	CaseData *Case `json:"caseData"`
}

// ErrorResponse is the failure envelope; Message is safe to show a client
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CaseEvent is pushed over the case feed whenever a case changes state
type CaseEvent struct {
	Event    string `json:"event"`
	CaseData Case   `json:"caseData"`
}

// HealthCheckResponse returns the health check response, alive or not
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

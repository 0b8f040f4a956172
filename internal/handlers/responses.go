package handlers

// HealthResponse is the liveness check payload
type HealthResponse struct {
	Status string `json:"status"`
}

// DriverUpsertResponse confirms a roster change
type DriverUpsertResponse struct {
	ID string `json:"id"`
}

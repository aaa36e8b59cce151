package contracts

type WebhookAck struct {
	Received bool `json:"received"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

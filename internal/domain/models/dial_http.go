package models

// Requests for the dial status endpoints.

type PreviewRequest struct {
	Value  float64 `query:"value" json:"value" validate:"gte=-1000,lte=1000"`
	Policy string  `query:"policy" json:"policy" validate:"omitempty,oneof=linear windowed proportional"`
}

type PreviewResponse struct {
	Value  float64 `json:"value"`
	Policy string  `json:"policy"`
	Angle  float64 `json:"angle"`
	Duty   uint16  `json:"duty"`
}

type OddsPreviewRequest struct {
	Odds   map[string]float64 `json:"odds" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	Target string             `json:"target"`
}

type OddsPreviewResponse struct {
	Probabilities map[string]float64 `json:"probabilities"`
	Target        string             `json:"target,omitempty"`
	Value         float64            `json:"value"`
	Angle         float64            `json:"angle"`
	Duty          uint16             `json:"duty"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Network    bool   `json:"network"`
	HasReading bool   `json:"has_reading"`
	Source     string `json:"source"`
}

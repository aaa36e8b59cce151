package contracts

type CheckoutRequest struct {
	ProjectID     string `json:"project_id" binding:"required"`
	TotalAmount   int64  `json:"total_amount" binding:"required,gt=0,lte=99999999"`
	ProjectAmount int64  `json:"project_amount" binding:"required,gt=0,ltefield=TotalAmount"`
	TipAmount     int64  `json:"tip_amount" binding:"omitempty,gte=0,ltefield=TotalAmount"`
	CoverFees     bool   `json:"cover_fees"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

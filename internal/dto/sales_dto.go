package dto

type SalesPrepareResponse struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	RequestID string `json:"request_id"`
}

type SalesSendResponse struct {
	Status string `json:"status"` // "sent" | "preview"
	To     string `json:"to"`
	Info   string `json:"info"`
}

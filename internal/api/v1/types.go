package apiv1

// Pong is the ping response.
type Pong struct {
	Ping string `json:"ping"`
}

// Error is the error body of every v1 endpoint.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GTIN is a freshly generated GTIN-14.
type GTIN struct {
	Gtin string `json:"gtin"`
}

// GTINValidation is the result of a GTIN check.
type GTINValidation struct {
	Gtin               string  `json:"gtin"`
	Valid              bool    `json:"valid"`
	Error              *string `json:"error,omitempty"`
	ExpectedCheckDigit *int    `json:"expected_check_digit,omitempty"`
}

// ComposeRequest is the body of POST /gs1/compose.
type ComposeRequest struct {
	Gtin       string  `json:"gtin" validate:"required"`
	Batch      *string `json:"batch,omitempty" validate:"omitempty,max=20"`
	ExpiryDate *string `json:"expiry_date,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
}

// Composition is a composed GS1 element string.
type Composition struct {
	Display string `json:"display"`
	Payload string `json:"payload"`
}

// GetGtinGenerateParams defines parameters for GetGtinGenerate.
type GetGtinGenerateParams struct {
	Indicator *int `query:"indicator"`
}

package dto

type RegisterDeviceRequest struct {
	Token    string                 `json:"token" validate:"required"`
	Platform string                 `json:"platform" validate:"required,oneof=web ios android"`
	PushKeys map[string]interface{} `json:"push_keys,omitempty"`
}

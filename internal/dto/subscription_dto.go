package dto

type SubscribeRequest struct {
	PlanType string `json:"plan_type" validate:"required,oneof=FREE BASIC STANDARD PREMIUM"`
}

type UsageRequest struct {
	VoiceMinutes int `json:"voice_minutes" validate:"min=0"`
	TextMessages int `json:"text_messages" validate:"min=0"`
}

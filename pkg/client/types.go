package client

import "time"

// Wire types the SDK exposes to callers. They mirror the server's JSON
// responses without pulling server-internal packages into consumers.

type User struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Avatar        *string `json:"avatar,omitempty"`
	EmailVerified bool    `json:"email_verified"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type sessionResponse struct {
	User User `json:"user"`
}

type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
	VoiceMinutes int     `json:"voice_minutes"`
	TextMessages int     `json:"text_messages"`
	IsActive     bool    `json:"is_active"`
	IsPopular    bool    `json:"is_popular"`
}

type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	PlanID             string     `json:"plan_id"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	VoiceMinutesUsed   int        `json:"voice_minutes_used"`
	TextMessagesUsed   int        `json:"text_messages_used"`
	Plan               Plan       `json:"plan"`
}

type PracticeMode struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Difficulty  string `json:"difficulty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

type UserDetails struct {
	User         User          `json:"user"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

type UserProgress struct {
	SessionsCompleted int        `json:"sessions_completed"`
	VoiceMinutesUsed  int        `json:"voice_minutes_used"`
	TextMessagesUsed  int        `json:"text_messages_used"`
	StreakDays        int        `json:"streak_days"`
	LastPracticedAt   *time.Time `json:"last_practiced_at,omitempty"`
}

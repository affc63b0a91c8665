package domain

import "time"

const (
	GSMaxRecipients  = 50
	GSMinDelay       = 1200 * time.Millisecond
	GSMaxDelay       = 30000 * time.Millisecond
	GSDefaultDelay   = 3500 * time.Millisecond
	GSCooldownWindow = 30 * time.Minute
)

// GSSession es el borrador de campaña de un operador. Vive solo en memoria.
type GSSession struct {
	Recipients      *RecipientSet
	Message         string
	AwaitingConfirm bool
	Delay           time.Duration
	// Sending queda en true mientras confirm entrega los DMs.
	Sending bool
}

func NewGSSession() *GSSession {
	return &GSSession{
		Recipients: NewRecipientSet(GSMaxRecipients),
		Delay:      GSDefaultDelay,
	}
}

// GSCooldown es el documento singleton "gs_last_run".
type GSCooldown struct {
	LastRunAt time.Time `json:"lastRunAt" bson:"lastRunAt"`
}

// Remaining devuelve cuanto falta para poder iniciar otra sesion (0 si ya se puede).
func (c GSCooldown) Remaining(now time.Time) time.Duration {
	if c.LastRunAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(c.LastRunAt)
	if elapsed >= GSCooldownWindow {
		return 0
	}
	return GSCooldownWindow - elapsed
}

package discord

import "github.com/bwmarrin/discordgo"

// isOperator: la propia cuenta o alguien en ACCEPTED_AUTHORS. Los bots nunca.
func (r *Router) isOperator(s *discordgo.Session, u *discordgo.User) bool {
	if u == nil || u.Bot {
		return false
	}
	if s.State != nil && s.State.User != nil && u.ID == s.State.User.ID {
		return true
	}
	return r.cfg.IsAccepted(u.ID)
}

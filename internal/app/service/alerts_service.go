package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type AlertsService struct {
	repo  AlertsRepo
	dm    DirectMessenger
	owner string
	log   *zap.Logger
}

func NewAlertsService(repo AlertsRepo, dm DirectMessenger, owner string, log *zap.Logger) *AlertsService {
	return &AlertsService{repo: repo, dm: dm, owner: owner, log: log}
}

func (s *AlertsService) Handle(ctx context.Context, prefix, sub string) (string, error) {
	switch strings.ToLower(sub) {
	case "":
		return fmt.Sprintf("Usage: `%[1]salerts on` ou `%[1]salerts off` ou `%[1]salerts status`", prefix), nil
	case "status":
		return s.Status(ctx)
	case "on":
		return s.set(ctx, true)
	case "off":
		return s.set(ctx, false)
	default:
		return "**ERREUR**\nCommande invalide. Utilisez: `on`, `off` ou `status`", nil
	}
}

func (s *AlertsService) set(ctx context.Context, enabled bool) (string, error) {
	if err := s.repo.SaveAlerts(ctx, enabled); err != nil {
		return "", fmt.Errorf("save alerts: %w", err)
	}
	txt := "désactivées"
	if enabled {
		txt = "activées"
	}
	s.log.Info("alerts toggled", zap.Bool("enabled", enabled))
	return "**ALERTES**\nAlertes " + txt, nil
}

func (s *AlertsService) Status(ctx context.Context) (string, error) {
	cfg, err := s.repo.GetAlerts(ctx)
	if err != nil {
		return "", fmt.Errorf("get alerts: %w", err)
	}
	state := "Désactivées"
	if cfg.Enabled {
		state = "Activées"
	}
	return "**STATUT DES ALERTES**\n\n" +
		"État: " + state + "\n\n" +
		"**Types d'alertes:**\n" +
		"- Déconnexion vocale\n" +
		"- Erreurs AutoVoc\n" +
		"- Problèmes de stockage", nil
}

// Notify manda un DM al owner si las alertas están activas. Best-effort.
func (s *AlertsService) Notify(ctx context.Context, text string) {
	if s.owner == "" {
		return
	}
	cfg, err := s.repo.GetAlerts(ctx)
	if err != nil {
		s.log.Warn("alerts lookup failed", zap.Error(err))
		return
	}
	if !cfg.Enabled {
		return
	}
	if err := s.dm.SendDM(ctx, s.owner, "**ALERTE BOT**\n\n"+text); err != nil {
		s.log.Warn("alert dm failed", zap.Error(err))
		return
	}
	s.log.Info("alert sent", zap.String("text", text))
}

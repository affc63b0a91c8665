package discord

import (
	"fmt"
	"strings"

	"github.com/jose-valero/streambot/internal/infra/config"
)

// userIDFromArg acepta "123", "<@123>" o "<@!123>".
func userIDFromArg(raw string) string {
	return strings.Trim(raw, "<@!>")
}

func onOff(b bool) string {
	if b {
		return "Activé"
	}
	return "Désactivé"
}

func configured(b bool) string {
	if b {
		return "Configuré"
	}
	return "Non configuré"
}

func helpText(p string) string {
	return strings.NewReplacer("$", p).Replace("**LISTE DES COMMANDES**\n\n" +
		"**STREAMING**\n" +
		"`$play-live <url>` - Streamer une vidéo en mode Go Live\n" +
		"`$play-cam <url>` - Streamer une vidéo en mode caméra\n" +
		"`$stop-stream` - Arrêter le stream en cours\n" +
		"`$disconnect` - Déconnecter du canal vocal\n\n" +
		"**CONTROLE VOCAL**\n" +
		"`$join <channel_id>` - Rejoindre un canal vocal\n" +
		"`$mute` / `$unmute` - Mute\n" +
		"`$deaf` / `$undeaf` - Casque mute\n" +
		"`$find <id ou @mention>` - Trouver un utilisateur en vocal\n\n" +
		"**AUTOVOC**\n" +
		"`$autovoc <channel_id>` - Activer l'AutoVoc sur un canal\n" +
		"`$autovoc off` - Désactiver l'AutoVoc\n\n" +
		"**INFORMATIONS**\n" +
		"`$uptime` - Statut et uptime du bot\n" +
		"`$health` - Check système complet\n" +
		"`$config` - Afficher la configuration\n" +
		"`$help` - Afficher cette aide\n\n" +
		"**UTILITAIRES**\n" +
		"`$clear <nombre>` - Supprimer vos messages\n" +
		"`$clearall` - Supprimer tous vos messages\n" +
		"`$gs` - DM en masse (session interactive)\n" +
		"`$restart` - Redémarrer le bot\n\n" +
		"**PROGRAMMATION**\n" +
		"`$schedule <temps> <commande>` - Programmer une commande\n" +
		"`$schedule list` - Liste des tâches programmées\n" +
		"`$schedule clear` - Annuler toutes les tâches\n\n" +
		"**ALERTES**\n" +
		"`$alerts on|off|status` - Notifications par DM")
}

// configText nunca muestra secretos, solo si están presentes.
func configText(c config.Config) string {
	so := c.Stream
	return "**CONFIGURATION DU BOT**\n\n" +
		"**STREAM**\n" +
		fmt.Sprintf("Résolution: `%dx%d`\n", so.Width, so.Height) +
		fmt.Sprintf("FPS: `%d`\n", so.FPS) +
		fmt.Sprintf("Bitrate: `%d kbps`\n", so.BitrateKbps) +
		fmt.Sprintf("Max Bitrate: `%d kbps`\n", so.MaxBitrateKbps) +
		fmt.Sprintf("Codec: `%s`\n", so.VideoCodec) +
		fmt.Sprintf("Hardware Acceleration: %s\n\n", onOff(so.HardwareAccel)) +
		"**UTILISATEURS AUTORISES**\n" +
		fmt.Sprintf("%d utilisateur(s) autorisé(s)\n\n", len(c.AcceptedAuthors)) +
		"**STOCKAGE**\n" +
		fmt.Sprintf("Backend: `%s`\n", c.Backend()) +
		fmt.Sprintf("Postgres: %s\n", configured(c.DatabaseURL != "")) +
		fmt.Sprintf("MongoDB: %s\n\n", configured(c.MongoURI != "")) +
		"**SECURITE**\n" +
		fmt.Sprintf("Token: %s\n", configured(c.DiscordToken != "")) +
		fmt.Sprintf("Préfixe: `%s`", c.Prefix)
}

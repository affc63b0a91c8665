package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// cmdLine es un mensaje "<prefix><nombre> <args...>" ya partido.
type cmdLine struct {
	Name string
	Args []string
	body string // texto después del prefijo
}

func parseCommand(prefix, content string) (cmdLine, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return cmdLine{}, false
	}
	body := strings.TrimSpace(content[len(prefix):])
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return cmdLine{}, false
	}
	return cmdLine{Name: strings.ToLower(fields[0]), Args: fields[1:], body: body}, true
}

// Arg devuelve el i-ésimo argumento o "".
func (c cmdLine) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Tail devuelve el texto crudo que sigue a los primeros n tokens del cuerpo
// (el nombre cuenta como token 0), conservando saltos de línea internos.
func (c cmdLine) Tail(n int) string {
	s := c.body
	for i := 0; i < n; i++ {
		s = strings.TrimLeft(s, " \t\r\n")
		idx := strings.IndexAny(s, " \t\r\n")
		if idx < 0 {
			return ""
		}
		s = s[idx:]
	}
	return strings.TrimSpace(s)
}

// call es el contexto de un comando en curso.
type call struct {
	s    *discordgo.Session
	m    *discordgo.MessageCreate
	line cmdLine
	// ttl de la respuesta; el handler puede pisarlo.
	ttl time.Duration
}

func (c *call) authorID() string  { return c.m.Author.ID }
func (c *call) channelID() string { return c.m.ChannelID }

type commandFunc func(ctx context.Context, c *call) (string, error)

type command struct {
	run commandFunc
	ttl time.Duration
	// long: corre con el contexto de vida del bot, sin el timeout por comando.
	long bool
}

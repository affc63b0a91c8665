package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jose-valero/streambot/internal/domain"
)

type AutoVocStatusSource interface {
	CurrentStatus(ctx context.Context) domain.AutoVocStatus
}

// Snapshot es la foto que usan $uptime, $health y /healthz.
type Snapshot struct {
	Uptime     time.Duration `json:"-"`
	UptimeText string        `json:"uptime"`
	HeapMB     uint64        `json:"heapMb"`
	SysMB      uint64        `json:"sysMb"`
	Goroutines int           `json:"goroutines"`
	CPUs       int           `json:"cpus"`
	Backend    string        `json:"backend"`
	StoreOK    bool          `json:"storeOk"`
	VoiceOK    bool          `json:"voiceConnected"`
	AutoVoc    string        `json:"autovoc"`
	Grade      string        `json:"grade"`
}

type HealthService struct {
	started time.Time
	backend string
	store   Pinger
	voice   VoiceGateway
	autovoc AutoVocStatusSource
	now     func() time.Time
}

func NewHealthService(started time.Time, backend string, store Pinger, voice VoiceGateway, autovoc AutoVocStatusSource) *HealthService {
	return &HealthService{started: started, backend: backend, store: store, voice: voice, autovoc: autovoc, now: time.Now}
}

// grade: Attention con heap > 90% de lo reservado, Critique > 95%.
func grade(heap, sys uint64) string {
	if sys == 0 {
		return "Excellent"
	}
	pct := heap * 100 / sys
	switch {
	case pct > 95:
		return "Critique"
	case pct > 90:
		return "Attention"
	default:
		return "Excellent"
	}
}

func (s *HealthService) Snapshot(ctx context.Context) Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	up := s.now().Sub(s.started)
	snap := Snapshot{
		Uptime:     up,
		UptimeText: formatUptime(up),
		HeapMB:     ms.HeapAlloc / 1024 / 1024,
		SysMB:      ms.HeapSys / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		Backend:    s.backend,
		AutoVoc:    s.autovoc.CurrentStatus(ctx).String(),
		Grade:      grade(ms.HeapAlloc, ms.HeapSys),
	}
	snap.StoreOK = s.store.Ping(ctx) == nil
	_, snap.VoiceOK = s.voice.CurrentVoiceChannel()
	return snap
}

func connected(ok bool) string {
	if ok {
		return "Connecté"
	}
	return "Déconnecté"
}

func (s *HealthService) Uptime(ctx context.Context) string {
	sn := s.Snapshot(ctx)
	return "**STATUT DU BOT**\n\n" +
		fmt.Sprintf("**Uptime:** `%s`\n", sn.UptimeText) +
		fmt.Sprintf("**Mémoire:** `%dMB / %dMB`\n", sn.HeapMB, sn.SysMB) +
		fmt.Sprintf("**Stockage (%s):** %s\n", sn.Backend, connected(sn.StoreOK)) +
		fmt.Sprintf("**Vocal:** %s\n", connected(sn.VoiceOK)) +
		fmt.Sprintf("**AutoVoc:** %s\n", sn.AutoVoc) +
		fmt.Sprintf("**Plateforme:** `%s/%s`\n", runtime.GOOS, runtime.GOARCH) +
		fmt.Sprintf("**Go:** `%s`", runtime.Version())
}

func (s *HealthService) Report(ctx context.Context) string {
	sn := s.Snapshot(ctx)
	return "**CHECK SYSTEME COMPLET**\n\n" +
		fmt.Sprintf("**Etat Général:** %s\n\n", sn.Grade) +
		"**UPTIME**\n" +
		fmt.Sprintf("Bot: `%s`\n\n", sn.UptimeText) +
		"**MEMOIRE**\n" +
		fmt.Sprintf("Heap: `%dMB / %dMB`\n", sn.HeapMB, sn.SysMB) +
		fmt.Sprintf("Goroutines: `%d`\n\n", sn.Goroutines) +
		"**CPU**\n" +
		fmt.Sprintf("Cœurs: `%d`\n\n", sn.CPUs) +
		"**CONNEXIONS**\n" +
		fmt.Sprintf("Stockage (%s): %s\n", sn.Backend, connected(sn.StoreOK)) +
		fmt.Sprintf("Vocal: %s\n", connected(sn.VoiceOK)) +
		fmt.Sprintf("AutoVoc: %s\n\n", sn.AutoVoc) +
		"**SYSTEME**\n" +
		fmt.Sprintf("Plateforme: `%s/%s`\n", runtime.GOOS, runtime.GOARCH) +
		fmt.Sprintf("Go: `%s`", runtime.Version())
}

// Package conversation implements the orchestration engine behind the
// automated WhatsApp assistant: peer identity normalization, funnel fact
// extraction, service policy resolution, the conversation stage machine and
// tool dispatch.
package conversation

import "time"

// LegacyFlags is the historical boolean field set used to track funnel
// progress. It is kept alongside Stage for backward compatibility with rows
// written before the explicit stage model existed. Stage is always derivable
// from these flags; see DeriveStageFromLegacy.
type LegacyFlags struct {
	OrcamentoEnviado         bool `json:"orcamento_enviado"`
	DadosPessoaisSolicitados bool `json:"dados_pessoais_solicitados"`
	AguardandoEscolhaHorario bool `json:"aguardando_escolha_horario"`
}

// State is the per-conversation row owned by the orchestrator while a single
// inbound message is being handled. The repository persists it between
// invocations.
type State struct {
	PeerKey         string            `json:"peer_key"`
	Canal           string            `json:"canal"`
	Stage           Stage             `json:"stage"`
	Flags           LegacyFlags       `json:"flags"`
	Nome            string            `json:"nome,omitempty"`
	Endereco        string            `json:"endereco,omitempty"`
	Equipamento     string            `json:"equipamento,omitempty"`
	Marca           string            `json:"marca,omitempty"`
	Problema        string            `json:"problema,omitempty"`
	Bocas           int               `json:"bocas,omitempty"`
	DataAgendamento *time.Time        `json:"data_agendamento,omitempty"`
	// Extra preserves unknown legacy fields verbatim. They never participate
	// in stage derivation.
	Extra     map[string]string `json:"extra,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewState returns an empty conversation state for a peer. An empty flag set
// derives to the initial stage.
func NewState(peerKey, canal string) State {
	now := time.Now()
	return State{
		PeerKey:   peerKey,
		Canal:     canal,
		Stage:     StageCollectingCore,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/sanitize"
)

// ToolExecutor dispatches one tool call. Implemented by tools.Executor.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, args map[string]any) (any, error)
}

// MessageSender delivers an outbound text to a peer on its channel.
type MessageSender interface {
	SendText(ctx context.Context, channel, to, body string) error
}

// InboundMessage is one message arriving from the gateway webhook.
type InboundMessage struct {
	Canal             string
	From              string
	Body              string
	ProviderMessageID string
}

// Orchestrator drives one conversation turn: normalize the peer, load state,
// extract facts, route intent, execute at most one tool, persist the merged
// state and send the reply.
type Orchestrator struct {
	store      Store
	executor   ToolExecutor
	classifier IntentClassifier
	renderer   Renderer
	sender     MessageSender
	pause      *PauseSwitch
	policies   []PolicyRule
	log        *logger.Logger
}

// NewOrchestrator wires the conversation engine. classifier may be nil, in
// which case only the deterministic routing rules run.
func NewOrchestrator(
	store Store,
	executor ToolExecutor,
	classifier IntentClassifier,
	renderer Renderer,
	sender MessageSender,
	pause *PauseSwitch,
	policies []PolicyRule,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		executor:   executor,
		classifier: classifier,
		renderer:   renderer,
		sender:     sender,
		pause:      pause,
		policies:   policies,
		log:        log,
	}
}

// HandleInbound processes one inbound message end to end. Conversational
// dead ends (unparseable intent, invalid tool args) produce fallback replies,
// not errors; only infrastructure failures propagate.
func (o *Orchestrator) HandleInbound(ctx context.Context, msg InboundMessage) error {
	peerKey, err := NormalizePeer(msg.Canal, msg.From)
	if err != nil {
		return err
	}
	log := o.log.WithConversation(peerKey)

	body := sanitize.Text(msg.Body)

	fresh, err := o.store.RecordInbound(ctx, msg.ProviderMessageID, peerKey, body)
	if err != nil {
		return fmt.Errorf("recording inbound message: %w", err)
	}
	if !fresh {
		log.Info("duplicate inbound message ignored", "provider_message_id", msg.ProviderMessageID)
		return nil
	}

	variants, err := PeerVariants(msg.Canal, msg.From)
	if err != nil {
		return err
	}
	state, err := o.store.GetByVariants(ctx, variants)
	isNew := errors.Is(err, ErrConversationNotFound)
	if isNew {
		state = NewState(peerKey, msg.Canal)
	} else if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	state.PeerKey = peerKey

	facts := GuessFunnelFacts(body)
	state = MergeStateWithStage(state, factUpdate(state, facts))

	if o.pause.Paused() {
		if _, err := o.store.Save(ctx, state); err != nil {
			return fmt.Errorf("saving conversation: %w", err)
		}
		log.Info("assistant paused, state recorded without reply")
		return nil
	}

	in := ClassifyInput{Text: body, Stage: state.Stage, State: state, Facts: facts}
	call := SelectIntent(in)
	if call == nil && o.classifier != nil {
		call, err = o.classifier.Classify(ctx, in)
		if err != nil {
			log.Warn("fallback classifier failed", "error", err)
			call = nil
		}
	}

	var reply string
	if call != nil {
		reply, state = o.runTool(ctx, log, state, call)
	} else {
		reply, state = o.converse(state, body, isNew)
	}

	if _, err := o.store.Save(ctx, state); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	if reply == "" {
		return nil
	}
	if err := o.sender.SendText(ctx, state.Canal, peerKey, reply); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	log.Info("reply sent", "stage", string(state.Stage))
	return nil
}

// factUpdate fills state blanks with newly guessed facts. Confirmed values
// are never overwritten by a later guess.
func factUpdate(state State, facts FunnelFacts) map[string]any {
	update := map[string]any{}
	if state.Equipamento == "" && facts.Equipamento != "" {
		update["equipamento"] = facts.Equipamento
	}
	if state.Marca == "" && facts.Marca != "" {
		update["marca"] = facts.Marca
	}
	if state.Problema == "" && facts.Problema != "" {
		update["problema"] = facts.Problema
	}
	if state.Bocas == 0 && facts.Bocas > 0 {
		update["bocas"] = facts.Bocas
	}
	return update
}

// runTool executes the routed call and maps its outcome to a reply plus a
// state update.
func (o *Orchestrator) runTool(ctx context.Context, log *logger.Logger, state State, call *ToolCall) (string, State) {
	args := o.enrichArgs(state, call)

	result, err := o.executor.Execute(ctx, call.Tool, args)
	if err != nil {
		return o.toolFailureReply(log, state, call.Tool, err), state
	}

	switch call.Tool {
	case tools.ToolConsultarHorarios:
		slots, _ := result.([]tools.Slot)
		if len(slots) == 0 {
			return o.render(TemplateToolUnavailable, nil), state
		}
		state = MergeStateWithStage(state, map[string]any{
			"aguardando_escolha_horario": true,
			extraOfferedSlots:            encodeOfferedSlots(slots),
		})
		return o.render(TemplateSlotOptions, map[string]string{"horarios": formatSlots(slots)}), state

	case tools.ToolCriarAgendamento:
		booked, _ := result.(tools.AppointmentResult)
		state = MergeStateWithStage(state, map[string]any{
			"aguardando_escolha_horario": false,
			"orcamento_enviado":          false,
			"dados_pessoais_solicitados": false,
			"data_agendamento":           booked.DataAgendamento,
			"agendamento_id":             booked.ID,
		})
		return o.render(TemplateSlotConfirmed, map[string]string{
			"data": booked.DataAgendamento.Format("02/01/2006"),
			"hora": booked.DataAgendamento.Format("15:04"),
		}), state

	case tools.ToolCancelarAgendamento:
		state = MergeStateWithStage(state, map[string]any{
			"aguardando_escolha_horario": false,
		})
		return o.render(TemplateCancelConfirmed, nil), state

	case tools.ToolGerarOrcamento:
		quote, _ := result.(tools.QuoteResult)
		state = MergeStateWithStage(state, map[string]any{"orcamento_enviado": true})
		return o.render(TemplateQuote, map[string]string{
			"equipamento":  state.Equipamento,
			"problema":     state.Problema,
			"valor_minimo": formatCentavos(quote.ValorMinimo),
			"valor_maximo": formatCentavos(quote.ValorMaximo),
		}), state

	case tools.ToolConsultarOrdemServico:
		status, _ := result.(tools.OrderStatusResult)
		return o.render(TemplateOrderStatus, map[string]string{
			"codigo": status.CodigoOrdem,
			"status": status.Status,
		}), state
	}

	return o.render(TemplateFallback, nil), state
}

// enrichArgs completes a tool call with values already confirmed in state so
// the customer is never asked twice.
func (o *Orchestrator) enrichArgs(state State, call *ToolCall) map[string]any {
	args := make(map[string]any, len(call.Args))
	for k, v := range call.Args {
		args[k] = v
	}

	switch call.Tool {
	case tools.ToolCriarAgendamento:
		setIfMissing(args, "nome", state.Nome)
		setIfMissing(args, "telefone", state.PeerKey)
		setIfMissing(args, "endereco", state.Endereco)
		setIfMissing(args, "equipamento", state.Equipamento)
		setIfMissing(args, "descricao_problema", state.Problema)
		if modalities := ResolveServiceModality(o.policies, state.Equipamento+" "+state.Problema); len(modalities) == 1 {
			setIfMissing(args, "modalidade", modalities[0])
		}
	case tools.ToolCancelarAgendamento:
		setIfMissing(args, "agendamento_id", state.Extra["agendamento_id"])
		setIfMissing(args, "telefone", state.PeerKey)
	case tools.ToolGerarOrcamento:
		setIfMissing(args, "equipamento", state.Equipamento)
		setIfMissing(args, "descricao_problema", state.Problema)
		setIfMissing(args, "marca", state.Marca)
		if _, ok := args["bocas"]; !ok && state.Bocas > 0 {
			args["bocas"] = state.Bocas
		}
	}
	return args
}

func setIfMissing(args map[string]any, key, value string) {
	if value == "" {
		return
	}
	if existing, ok := args[key]; ok {
		if s, isString := existing.(string); !isString || s != "" {
			return
		}
	}
	args[key] = value
}

// toolFailureReply maps the tool error taxonomy to customer-facing copy.
func (o *Orchestrator) toolFailureReply(log *logger.Logger, state State, tool string, err error) string {
	var valErr *tools.ValidationError
	var unknownErr *tools.UnknownToolError
	switch {
	case errors.As(err, &valErr):
		log.Info("tool call rejected", "tool", tool, "field", valErr.Field)
		if tool == tools.ToolCriarAgendamento && state.Stage != StageConfirmingSlot {
			return o.render(TemplateAskPersonalData, nil)
		}
		return o.render(TemplateFallback, nil)
	case errors.As(err, &unknownErr):
		log.Warn("unknown tool routed", "tool", tool)
		return o.render(TemplateFallback, nil)
	default:
		log.Error("tool execution failed", "tool", tool, "error", err)
		return o.render(TemplateToolUnavailable, nil)
	}
}

// converse produces the stage-appropriate reply when no tool was routed, and
// captures personal data while collecting it.
func (o *Orchestrator) converse(state State, body string, isNew bool) (string, State) {
	switch state.Stage {
	case StageCollectingCore:
		if isNew {
			return o.render(TemplateWelcome, nil), state
		}
		if state.Equipamento == "" {
			return o.render(TemplateAskEquipment, nil), state
		}
		return o.render(TemplateAskProblem, map[string]string{"equipamento": state.Equipamento}), state

	case StageQuoted:
		state = MergeStateWithStage(state, map[string]any{"dados_pessoais_solicitados": true})
		return o.render(TemplateAskPersonalData, nil), state

	case StageCollectingPersonal:
		if state.Nome == "" && looksLikeFreeText(body) {
			state = MergeStateWithStage(state, map[string]any{"nome": body})
			return o.render(TemplateAskAddress, map[string]string{"nome": state.Nome}), state
		}
		if state.Nome != "" && state.Endereco == "" && looksLikeFreeText(body) {
			state = MergeStateWithStage(state, map[string]any{"endereco": body})
			return o.render(TemplateAskDate, nil), state
		}
		return o.render(TemplateAskPersonalData, nil), state

	case StageConfirmingSlot:
		return o.render(TemplateFallback, nil), state
	}
	return o.render(TemplateFallback, nil), state
}

// looksLikeFreeText filters out one-word acknowledgements ("ok", "sim") so
// they are never captured as a name or address.
func looksLikeFreeText(body string) bool {
	return len(strings.Fields(body)) >= 2
}

func (o *Orchestrator) render(key string, vars map[string]string) string {
	text, err := o.renderer.Render(key, vars)
	if err != nil {
		o.log.Error("template rendering failed", "template", key, "error", err)
		return defaultTemplates[TemplateFallback]
	}
	return text
}

// formatSlots numbers the options so the customer can answer with "1", "2".
func formatSlots(slots []tools.Slot) string {
	lines := make([]string, 0, len(slots))
	for i, slot := range slots {
		lines = append(lines, strconv.Itoa(i+1)+") "+slot.Data+" "+slot.HoraInicio+" às "+slot.HoraFim)
	}
	return strings.Join(lines, "\n")
}

// formatCentavos renders an amount in cents as pt-BR currency digits.
func formatCentavos(centavos int64) string {
	reais := centavos / 100
	rest := centavos % 100
	out := strconv.FormatInt(reais, 10) + ","
	if rest < 10 {
		out += "0"
	}
	return out + strconv.FormatInt(rest, 10)
}

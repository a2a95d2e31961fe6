package conversation

import (
	"strings"

	"atendimento_backend/platform/apperr"
)

// Renderer turns a template key plus a variable map into outbound text. The
// orchestrator never builds customer-facing strings itself.
type Renderer interface {
	Render(key string, vars map[string]string) (string, error)
}

// Template keys the orchestrator emits.
const (
	TemplateWelcome         = "boas_vindas"
	TemplateAskEquipment    = "pergunta_equipamento"
	TemplateAskProblem      = "pergunta_problema"
	TemplateQuote           = "orcamento"
	TemplateAskPersonalData = "pergunta_dados_pessoais"
	TemplateAskAddress      = "pergunta_endereco"
	TemplateAskDate         = "pergunta_data"
	TemplateSlotOptions     = "opcoes_horario"
	TemplateSlotConfirmed   = "horario_confirmado"
	TemplateCancelConfirmed = "cancelamento_confirmado"
	TemplateOrderStatus     = "status_ordem"
	TemplateFallback        = "nao_entendi"
	TemplateToolUnavailable = "servico_indisponivel"
)

// defaultTemplates is the built-in pt-BR template table. Placeholders use
// {{nome}} style markers replaced by plain substitution.
var defaultTemplates = map[string]string{
	TemplateWelcome:         "Olá! Sou o assistente da TecAssist. Me conta qual equipamento está com problema?",
	TemplateAskEquipment:    "Qual é o equipamento com defeito? (fogão, geladeira, máquina de lavar...)",
	TemplateAskProblem:      "Entendi, {{equipamento}}. Pode me descrever o que está acontecendo?",
	TemplateQuote:           "Para {{equipamento}} com \"{{problema}}\", a visita técnica fica entre R$ {{valor_minimo}} e R$ {{valor_maximo}}. Quer agendar?",
	TemplateAskPersonalData: "Perfeito! Para agendar preciso do seu nome completo e endereço.",
	TemplateAskAddress:      "Obrigado, {{nome}}! Agora me passa o endereço completo com número, por favor.",
	TemplateAskDate:         "Anotado! Qual dia fica melhor para você? Pode mandar no formato 02/09/2026.",
	TemplateSlotOptions:     "Tenho estes horários disponíveis:\n{{horarios}}\nQual prefere?",
	TemplateSlotConfirmed:   "Agendado! Técnico confirmado para {{data}} às {{hora}}. Você recebe um lembrete um dia antes.",
	TemplateCancelConfirmed: "Tudo bem, agendamento cancelado. Quando quiser remarcar é só chamar.",
	TemplateOrderStatus:     "Sua ordem {{codigo}} está: {{status}}.",
	TemplateFallback:        "Desculpe, não entendi. Pode reformular?",
	TemplateToolUnavailable: "Estou com dificuldade para acessar o sistema agora. Tente novamente em alguns minutos, por favor.",
}

// TemplateRenderer is the default Renderer backed by an in-memory table.
type TemplateRenderer struct {
	templates map[string]string
}

// NewTemplateRenderer returns a renderer over the built-in table, with
// overrides applied on top. Overrides let deployments adjust copy without a
// rebuild.
func NewTemplateRenderer(overrides map[string]string) *TemplateRenderer {
	templates := make(map[string]string, len(defaultTemplates))
	for key, text := range defaultTemplates {
		templates[key] = text
	}
	for key, text := range overrides {
		templates[key] = text
	}
	return &TemplateRenderer{templates: templates}
}

// Render substitutes {{var}} markers. Unknown keys fail; unmatched markers
// are left in place so missing variables are visible in logs, not silently
// blanked.
func (r *TemplateRenderer) Render(key string, vars map[string]string) (string, error) {
	text, ok := r.templates[key]
	if !ok {
		return "", apperr.NotFound("template not found").
			WithOp("conversation.Render").
			WithDetails(map[string]string{"key": key})
	}
	for name, value := range vars {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text, nil
}

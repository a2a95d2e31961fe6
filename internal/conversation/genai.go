package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/platform/logger"

	"google.golang.org/genai"
)

// classifierPrompt instructs the model to pick exactly one registered tool or
// abstain. The response is constrained to JSON.
const classifierPrompt = `Você roteia mensagens de clientes de uma assistência técnica de eletrodomésticos.
Escolha no máximo UMA ferramenta para a mensagem abaixo, ou nenhuma.

Ferramentas: consultar_horarios, criar_agendamento, cancelar_agendamento, gerar_orcamento, consultar_ordem_servico.

Etapa atual da conversa: %s
Mensagem do cliente: %q

Responda apenas JSON no formato {"tool": "<nome ou vazio>", "args": {…}}.
Se nenhuma ferramenta se aplica, responda {"tool": "", "args": {}}.`

// GenAIClassifier asks Gemini which tool, if any, an ambiguous message maps
// to. It only sees messages the deterministic rules abstained on, and its
// answer is still validated against the closed registry before dispatch.
type GenAIClassifier struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGenAIClassifier builds the Gemini-backed fallback classifier.
func NewGenAIClassifier(ctx context.Context, apiKey, model string, log *logger.Logger) (*GenAIClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GenAIClassifier{client: client, model: model, log: log}, nil
}

type classifierReply struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Classify implements IntentClassifier. A model answer naming a tool outside
// the registry is treated as an abstention, not an error.
func (c *GenAIClassifier) Classify(ctx context.Context, in ClassifyInput) (*ToolCall, error) {
	prompt := fmt.Sprintf(classifierPrompt, in.Stage, in.Text)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("intent classification: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	var reply classifierReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		c.log.Warn("classifier returned non-JSON answer", "answer", raw)
		return nil, nil
	}
	if reply.Tool == "" {
		return nil, nil
	}
	if !registeredTool(reply.Tool) {
		c.log.Warn("classifier suggested unregistered tool", "tool", reply.Tool)
		return nil, nil
	}
	if reply.Args == nil {
		reply.Args = map[string]any{}
	}
	return &ToolCall{Tool: reply.Tool, Args: reply.Args}, nil
}

func registeredTool(name string) bool {
	switch name {
	case tools.ToolConsultarHorarios,
		tools.ToolCriarAgendamento,
		tools.ToolCancelarAgendamento,
		tools.ToolGerarOrcamento,
		tools.ToolConsultarOrdemServico:
		return true
	}
	return false
}

// Package orders tracks workshop service orders. Customers quote the order
// code from their receipt ("OS-1042") and the assistant reports the current
// repair status.
package orders

import (
	"fmt"
	"strings"
)

// Service order lifecycle.
const (
	StatusReceived         = "recebido"
	StatusInDiagnosis      = "em_diagnostico"
	StatusAwaitingApproval = "aguardando_aprovacao"
	StatusInRepair         = "em_reparo"
	StatusReady            = "pronto"
	StatusDelivered        = "entregue"
	StatusCancelled        = "cancelado"
)

var validStatuses = map[string]bool{
	StatusReceived:         true,
	StatusInDiagnosis:      true,
	StatusAwaitingApproval: true,
	StatusInRepair:         true,
	StatusReady:            true,
	StatusDelivered:        true,
	StatusCancelled:        true,
}

// StatusLabel maps a status to the customer-facing pt-BR phrase.
var StatusLabel = map[string]string{
	StatusReceived:         "recebido na oficina",
	StatusInDiagnosis:      "em diagnóstico",
	StatusAwaitingApproval: "aguardando aprovação do orçamento",
	StatusInRepair:         "em reparo",
	StatusReady:            "pronto para retirada",
	StatusDelivered:        "entregue",
	StatusCancelled:        "cancelado",
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// NormalizeCode canonicalizes a customer-typed order code. "os 1042",
// "OS-1042" and "os1042" all resolve to "OS-1042".
func NormalizeCode(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "OS")
	s = strings.TrimLeft(s, " -")
	if s == "" {
		return ""
	}
	return fmt.Sprintf("OS-%s", s)
}

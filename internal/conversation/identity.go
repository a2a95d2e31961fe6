package conversation

import (
	"strings"

	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/phone"
	"atendimento_backend/platform/textnorm"
)

// Channels whose peer addresses are phone numbers. Anything else is treated
// as an opaque identifier and only case/whitespace normalized.
var phoneChannels = map[string]bool{
	"whatsapp": true,
	"sms":      true,
	"telefone": true,
}

// transportSuffixes are provider-specific JID suffixes that must not leak
// into the canonical key.
var transportSuffixes = []string{
	"@s.whatsapp.net",
	"@c.us",
	"@g.us",
	"@lid",
}

// NormalizePeer reduces a raw peer address to its canonical key. For
// phone-based channels the key is the E.164 digit string without the plus
// sign; transport prefixes ("whatsapp:") and JID suffixes ("@c.us") are
// stripped first. The function is idempotent: normalizing an already
// canonical key returns it unchanged.
func NormalizePeer(channel, raw string) (string, error) {
	const op = "conversation.NormalizePeer"

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperr.Validation("peer address is empty").WithOp(op)
	}

	if !phoneChannels[strings.ToLower(strings.TrimSpace(channel))] {
		return textnorm.Fold(trimmed), nil
	}

	stripped := strings.TrimPrefix(strings.ToLower(trimmed), "whatsapp:")
	stripped = strings.TrimSpace(stripped)
	for _, suffix := range transportSuffixes {
		if cut, ok := strings.CutSuffix(stripped, suffix); ok {
			stripped = cut
			break
		}
	}

	digits := phone.Digits(phone.NormalizeE164(stripped))
	if digits == "" {
		return "", apperr.Validation("peer address contains no digits").WithOp(op).
			WithDetails(map[string]string{"raw": raw})
	}
	if len(digits) < 8 {
		return "", apperr.Validation("peer address is too short to be a phone number").WithOp(op).
			WithDetails(map[string]string{"raw": raw})
	}
	return digits, nil
}

// PeerVariants returns every address form under which a conversation for the
// given peer may have been stored, canonical key first. Repository lookups
// match against all of them so that rows written by older gateway versions
// are still found.
func PeerVariants(channel, raw string) ([]string, error) {
	canonical, err := NormalizePeer(channel, raw)
	if err != nil {
		return nil, err
	}
	if !phoneChannels[strings.ToLower(strings.TrimSpace(channel))] {
		return []string{canonical}, nil
	}

	variants := []string{
		canonical,
		"+" + canonical,
		canonical + "@s.whatsapp.net",
		canonical + "@c.us",
		"whatsapp:+" + canonical,
	}
	return variants, nil
}

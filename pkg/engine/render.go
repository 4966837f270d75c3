package engine

import (
	"encoding/json"
	"unicode/utf8"
)

// MaxResponseBytes is the output ceiling imposed by the consuming on-chain
// caller. Token data is never cut to fit it, only diagnostic messages.
const MaxResponseBytes = 900

// EncodeBounded marshals the envelope compactly without exceeding the limit.
// If the encoding is too large, all messages share the remaining byte budget
// equally; each over-long message is cut at its share with a trailing "...",
// and the share is halved until the envelope fits. Deterministic for a given
// envelope. If even message-free encoding exceeds the limit, the envelope is
// returned as-is.
func EncodeBounded(resp *Response, limit int) ([]byte, error) {
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	if len(out) <= limit {
		return out, nil
	}

	messages := 0
	for _, r := range resp.Tokens {
		if r.Message != nil {
			messages++
		}
	}
	if messages == 0 {
		return out, nil
	}

	// Size with every message emptied bounds what the budget can recover.
	base, err := json.Marshal(withTruncatedMessages(resp, 0))
	if err != nil {
		return nil, err
	}
	if len(base) > limit {
		return base, nil
	}

	share := (limit - len(base)) / messages
	for ; share > 0; share /= 2 {
		out, err = json.Marshal(withTruncatedMessages(resp, share))
		if err != nil {
			return nil, err
		}
		if len(out) <= limit {
			return out, nil
		}
	}

	return base, nil
}

// withTruncatedMessages returns a copy of the envelope with every message
// capped at maxLen bytes. Data and token order are untouched.
func withTruncatedMessages(resp *Response, maxLen int) *Response {
	tokens := make([]TokenResult, len(resp.Tokens))
	copy(tokens, resp.Tokens)

	for i := range tokens {
		if tokens[i].Message == nil {
			continue
		}
		msg := truncate(*tokens[i].Message, maxLen)
		tokens[i].Message = &msg
	}

	return &Response{Tokens: tokens}
}

// truncate cuts s to at most n bytes on a rune boundary, marking the cut
// with a trailing "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const ellipsis = "..."
	if n <= len(ellipsis) {
		return ""
	}
	cut := n - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

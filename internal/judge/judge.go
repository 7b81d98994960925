// Package judge calls an OpenAI-style chat-completions gateway to turn
// a formatted transcript into structured quality sub-scores.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/types"
)

// Client posts the scoring prompt to a chat-completions gateway and
// parses the strict-JSON judgment out of the response.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	http       *http.Client
	timeout    time.Duration
}

func NewClient(gatewayURL, apiKey, model string) *Client {
	timeout := 25 * time.Second
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
		http:       &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Score runs the judgment call. Returns (nil, nil) when no API key is
// configured — the pipeline treats that as "judge declined" and falls
// back to deterministic scoring. Use USE_MOCK_JUDGE=true for offline runs.
func (c *Client) Score(ctx context.Context, transcript string, meta types.JudgmentContext) (*types.Judgment, error) {
	log := logger.New().WithField("component", "judge")

	if os.Getenv("USE_MOCK_JUDGE") == "true" {
		log.Info("mock judge mode ON - returning deterministic judgment")
		return mockJudgment(), nil
	}

	if c.apiKey == "" {
		log.Warn("judge API key not configured, skipping AI scoring")
		return nil, nil
	}

	prompt := BuildPrompt(transcript, meta)
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature":     0.2,
		"max_tokens":      600,
		"response_format": map[string]string{"type": "json_object"},
	}
	data, _ := json.Marshal(reqBody)

	var raw map[string]any
	var lastErr error

	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, _ := http.NewRequestWithContext(callCtx, http.MethodPost, c.gatewayURL, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("judge request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if inner := extractContentFromChoices(body); inner != "" {
			if err := json.Unmarshal([]byte(inner), &raw); err == nil {
				lastErr = nil
				return nil
			}
		}
		if fallback := ExtractJSON(string(body)); fallback != "" {
			if err := json.Unmarshal([]byte(fallback), &raw); err == nil {
				lastErr = nil
				return nil
			}
		}

		lastErr = fmt.Errorf("no JSON found in judge output (status %d)", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("judgment call failed: %w", lastErr)
	}

	return parseJudgment(raw), nil
}

// parseJudgment validates and clamps the raw judge output at the
// boundary so malformed values never reach the merge.
func parseJudgment(raw map[string]any) *types.Judgment {
	j := &types.Judgment{
		SLAScore:          clamp(intField(raw, "slaScore"), 0, 25),
		FollowupScore:     clamp(intField(raw, "followupScore"), 0, 20),
		TriggerScore:      clamp(intField(raw, "triggerScore"), 0, 20),
		QualityScore:      clamp(intField(raw, "qualityScore"), 0, 20),
		DetectedArchetype: types.NormalizeArchetype(strField(raw, "detectedArchetype")),
		MistakeTags:       strSlice(raw["mistakeTags"]),
		StrengthTags:      strSlice(raw["strengthTags"]),
		Notes:             strField(raw, "notes"),
		CopyPasteDetected: boolField(raw, "copyPasteDetected"),
		MissedHighIntent:  boolField(raw, "missedHighIntent"),
		SpamDetected:      boolField(raw, "spamDetected"),
	}

	if quotes, ok := raw["notableQuotes"].([]any); ok {
		for _, q := range quotes {
			if len(j.NotableQuotes) >= 4 {
				break
			}
			qm, ok := q.(map[string]any)
			if !ok {
				continue
			}
			text := strField(qm, "text")
			qtype := types.QuoteType(strField(qm, "type"))
			switch qtype {
			case types.QuoteGreat, types.QuoteGood, types.QuoteBad, types.QuoteUgly:
			default:
				continue
			}
			if text == "" {
				continue
			}
			j.NotableQuotes = append(j.NotableQuotes, types.NotableQuote{
				Text:    clip(text, 120),
				Type:    qtype,
				Context: clip(strField(qm, "context"), 100),
			})
		}
	}

	return j
}

func mockJudgment() *types.Judgment {
	return &types.Judgment{
		SLAScore:          20,
		FollowupScore:     14,
		TriggerScore:      12,
		QualityScore:      15,
		DetectedArchetype: types.ArchetypeTease,
		MistakeTags:       []string{"no_cta"},
		StrengthTags:      []string{"built_tension", "used_fan_name"},
		Notes:             "Strong tension building and personalization, but two buying signals got soft answers without a clear CTA.",
		NotableQuotes: []types.NotableQuote{
			{Text: "patience baby… good things come to fans who earn it", Type: types.QuoteGood, Context: "push-pull after fan asked for more"},
		},
	}
}

// extractContentFromChoices reads openai-style choices[0].message.content
// and extracts the JSON object inside it.
func extractContentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return ExtractJSON(content)
}

// ExtractJSON finds the first balanced JSON object in a string and
// returns it. Common markdown fences are stripped first.
func ExtractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

func intField(m map[string]any, key string) int {
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

func strField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func strSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

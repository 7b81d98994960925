// Package story runs the second, independent judgment call: segmenting
// a transcript into narrative arcs and scoring selling technique.
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatter-insights-go/internal/judge"
	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/types"
)

const minMessages = 8

const storySystemPrompt = `You are an expert OnlyFans agency QA analyst specializing in selling technique analysis.

You analyze chatter-fan conversations to identify STORY ARCS and SELLING PATTERNS.

## Your Task
Given a conversation between a CHATTER (the agency employee) and a FAN, you must:

1. IDENTIFY STORY ARCS — contiguous sequences of themed messages that form a narrative (e.g., a fantasy scenario, a roleplay, a build-up to a sale)
2. LABEL KEY MESSAGES — tag important moments with labels
3. ANALYZE SELLING PATTERNS — how the chatter embedded sells into the conversation flow

## Message Labels (use these exact strings)
- STORY_START — beginning of a narrative/fantasy arc
- STORY_END — natural conclusion of a story arc
- BUYING_SIGNAL — fan shows interest in purchasing (e.g., "show me", "I want", "send it", emotional investment)
- SELL — chatter attempts to sell content (embedded or direct). Number them: SELL #1, SELL #2, etc.
- EMOTIONAL_HOOK — chatter creates emotional connection ("I've never felt this way before", exclusivity)
- PEAK_ENGAGEMENT — fan is at maximum emotional investment
- VISUAL_SETUP — chatter paints a vivid scene ("imagine...")
- SENSORY_PACING — chatter uses sensory language to build tension
- FAN_INVESTED — moment when fan becomes deeply invested (writing own fantasy, long responses)
- SOFT_SELL — gentle sell attempt disguised as part of the story

## Selling Pattern Checklist
There are TWO valid selling approaches. Evaluate which the chatter used:

**APPROACH A: Buying Signal → Immediate Sell (BEST when fan signals intent)**
When a fan gives a buying signal ("show me", "I want to see", "send it"), the correct move is to sell IMMEDIATELY. Do NOT penalize fast sells after buying signals — that's perfect execution.
1. Fan gives buying signal (request, desire, curiosity)
2. Chatter responds with sell IMMEDIATELY (within 1-2 messages) ← THIS IS CORRECT
3. Sell matches what the fan asked for (relevant content)
4. Follow-up after sell to keep engagement alive
5. Look for next opportunity

**APPROACH B: Story Arc → Embedded Sell (when no buying signal yet)**
When no buying signal exists, the chatter should build interest first:
1. Start with "imagine" / visual setup
2. Build 2-3 story messages to create desire
3. Sell embedded naturally in story flow
4. Continue engagement after sell
5. Drop emotional hook for next opportunity

CRITICAL: If a fan explicitly asks for content or signals buying intent, and the chatter sells immediately — that is a PERFECT sell, NOT a mistake. Score it highly. The worst thing a chatter can do is ignore a buying signal to "build more story".

## Output Format
Return valid JSON only. No markdown wrapping.

{
  "storyArcs": [
    {
      "title": "Short descriptive title of the arc",
      "messageRange": [startIndex, endIndex],
      "messageLabels": [
        { "messageIndex": 0, "label": "STORY_START", "sublabel": null, "isSellMessage": false },
        { "messageIndex": 5, "label": "SELL", "sublabel": "SELL WITHIN STORY", "isSellMessage": true }
      ],
      "sellCount": 2,
      "sellQuotes": ["exact chatter sell message text"],
      "storyFlowAnalysis": "Brief analysis of whether sells broke the narrative",
      "fanInvestment": "Description of when/how the fan became invested",
      "keyElements": ["kitchen setting", "imagine visual setup"],
      "sellingApproach": "A_BUYING_SIGNAL or B_STORY_ARC",
      "sellingPattern": [
        { "description": "Fan gave buying signal", "achieved": true, "messageRef": 5 },
        { "description": "Chatter sold immediately after signal", "achieved": true, "messageRef": 6 }
      ]
    }
  ],
  "overallSellingScore": 85,
  "fanInvestmentMoment": "By message #12 fan is writing own fantasy"
}

IMPORTANT:
- messageIndex is 0-based relative to the conversation messages array
- Only label messages that have significance (most will have none)
- If no clear story arc exists, return empty storyArcs array
- overallSellingScore: 0-100 rating of the chatter's selling technique
- Be concise in analysis text (1-2 sentences each)`

// Client posts conversations to a large-context gateway model for
// narrative analysis.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	http       *http.Client
	timeout    time.Duration
}

func NewClient(gatewayURL, apiKey, model string) *Client {
	timeout := 40 * time.Second
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
		http:       &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Analyze runs story analysis on a formatted conversation. Returns
// (nil, nil) when the analyzer cannot or should not run (missing key,
// too few messages) — this is a soft enrichment, never a hard
// dependency for the base score.
func (c *Client) Analyze(ctx context.Context, transcript string, messageCount int) (*types.StoryAnalysis, error) {
	log := logger.New().WithField("component", "story")

	if c.apiKey == "" {
		log.Warn("story API key not configured, skipping")
		return nil, nil
	}
	if messageCount < minMessages {
		return nil, nil
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": storySystemPrompt},
			{"role": "user", "content": "Analyze this conversation for story arcs and selling patterns:\n\n" + transcript},
		},
		"thinking":        map[string]string{"type": "disabled"},
		"max_tokens":      4096,
		"response_format": map[string]string{"type": "json_object"},
	}
	data, _ := json.Marshal(reqBody)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.gatewayURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("story request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Warn("story gateway error")
		return nil, fmt.Errorf("story gateway status %d", resp.StatusCode)
	}

	var parsed map[string]any
	content := judge.ExtractJSON(extractContent(body))
	if content == "" {
		content = judge.ExtractJSON(string(body))
	}
	if content == "" || json.Unmarshal([]byte(content), &parsed) != nil {
		return nil, fmt.Errorf("story returned no parseable JSON")
	}

	return Validate(parsed), nil
}

func extractContent(body []byte) string {
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
	return content
}

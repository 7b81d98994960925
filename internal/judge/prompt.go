package judge

import (
	"fmt"
	"math"

	"chatter-insights-go/internal/types"
)

const systemPrompt = `You are an expert QA scorer for an OnlyFans chatting agency. You grade chatter performance honestly and specifically. Never inflate scores. Be calibrated: 50 is average, 80+ is excellent, below 40 is poor.`

// BuildPrompt renders the scoring rubric with the transcript and the
// deterministic context signals.
func BuildPrompt(transcript string, meta types.JudgmentContext) string {
	avgResponse := "unknown"
	if meta.AvgResponseTimeSec > 0 {
		avgResponse = fmt.Sprintf("%ds", int(math.Round(meta.AvgResponseTimeSec)))
	}

	return fmt.Sprintf(`Score this chatter's performance over the last hour.

CHATTER: %s
MODEL ACCOUNT: %s
Messages analyzed: %d
Robot phrases detected: %d
Creative phrases detected: %d
Avg response time: %s

CONVERSATIONS:
%s

SCORING RUBRIC (85 points from AI, revenue is separate):

1. SLA/Responsiveness (0-25):
   - <2min avg reply = 25, <5min = 20, 5-15min = 15, >15min = 5, no replies = 0
   - Penalize leaving fans on read

2. Follow-up Discipline (0-20):
   - Re-engages cooling conversations proactively
   - Doesn't leave hot conversations hanging
   - Circles back to interested fans
   - 0 = never follows up, 20 = excellent follow-up game

3. Trigger Handling (0-20):
   - Catches buying signals: "how much", "unlock", "send me", "I want", "price?"
   - Responds to triggers with clear CTA (not just "yes babe")
   - 0 = missed all triggers, 20 = caught and converted every signal

4. Quality/Personalization (0-20):
   - Uses fan's name and personal details
   - Adapts tone to each fan (not one-size-fits-all)
   - Push-pull dynamics, builds tension
   - Non-robotic, creative responses
   - 0 = completely generic, 20 = deeply personalized

ARCHETYPE DETECTION (pick the closest match or null):
- "yes_babe_robot": Generic "yes babe" responses, no personality, autopilot
- "interview_bot": Too many questions back-to-back, kills the mood
- "doormat": Agrees with everything, no tension or challenge
- "commander": Too aggressive, doesn't read the room, pushes too hard
- "tease": Great tension building but never closes, leaves money on table
- "chameleon": Adapts style to each fan type — the gold standard

HARD PENALTY FLAGS:
- copyPasteDetected: true if >30%% of responses look copy-pasted (identical or near-identical)
- missedHighIntent: true if fan said "how much", "send me", "I want to buy" and chatter ignored it
- spamDetected: true if chatter sent 3+ identical messages in a row or mass-blasted

NOTABLE QUOTES (required, 1-4 quotes):
Pull actual chatter messages that show skill or lack of skill. Categorize each:
- "great": Elite-level message — perfect push-pull, creative, made the fan spend
- "good": Solid professional work — good CTA, personalized, on-brand
- "bad": Missed opportunity or lazy response — flat ack, generic, ignored signal
- "ugly": Cringeworthy — robotic, begging, killed the vibe, lost money
Include the exact chatter message text (short, max 80 chars) and brief context of what happened.

Return ONLY valid JSON:
{
  "slaScore": 0-25,
  "followupScore": 0-20,
  "triggerScore": 0-20,
  "qualityScore": 0-20,
  "detectedArchetype": "string or null",
  "mistakeTags": ["missed_trigger","flat_ack","no_cta","copy_paste","too_slow","no_followup","permission_asking","begging","too_available"],
  "strengthTags": ["good_push_pull","strong_cta","adapted_to_fan","built_tension","proactive_followup","used_fan_name","created_urgency","good_closer"],
  "notes": "2-3 sentence summary of performance",
  "notableQuotes": [{"text":"exact chatter message","type":"great|good|bad|ugly","context":"what was happening"}],
  "copyPasteDetected": false,
  "missedHighIntent": false,
  "spamDetected": false
}`,
		meta.ChatterEmail,
		meta.CreatorName,
		meta.TotalMessages,
		meta.RobotPhraseCount,
		meta.CreativePhraseCount,
		avgResponse,
		transcript,
	)
}

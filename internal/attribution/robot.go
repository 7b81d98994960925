package attribution

import (
	"regexp"
	"strings"
)

// Generic phrases that make conversations feel canned. Matched against
// the whole message or its leading/trailing words.
var robotPhrases = []string{
	"yes babe",
	"aww thanks",
	"sounds good",
	"that's so sweet",
	"thanks babe",
	"love that",
	"omg really",
	"haha yes",
	"that's hot",
	"you're so sweet",
	"thanks hun",
	"lol thanks",
	"aw babe",
	"you're the best",
	"miss you too",
	"love you too",
	"hey babe",
	"hi babe",
	"good morning babe",
	"good night babe",
	"xo",
	"xoxo",
	"muah",
}

// Indicators of actual engagement: questions, personal references,
// scene-building, push-pull and urgency language.
var creativeIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\?`),
	regexp.MustCompile(`(?i)\b(remember|told me|you said|last time)\b`),
	regexp.MustCompile(`(?i)\b(honestly|actually|really want|can't stop|thinking about)\b`),
	regexp.MustCompile(`(?i)\b(imagine|picture this|what if|between us|just for you|special)\b`),
	regexp.MustCompile(`(?i)\b(maybe|might|if you're good|earn it|deserve|patience)\b`),
	regexp.MustCompile(`(?i)\b(limited|only|tonight|right now|before|don't miss)\b`),
}

// RobotDetection counts robotic vs creative chatter phrases; both feed
// the judgment context and the persisted score record.
type RobotDetection struct {
	RobotCount       int
	CreativeCount    int
	RobotExamples    []string
	CreativeExamples []string
}

// DetectRobotPhrases analyzes chatter messages for canned phrases vs
// creative writing. Deterministic, no external calls.
func DetectRobotPhrases(chatterMessages []string) RobotDetection {
	var det RobotDetection

	for _, msg := range chatterMessages {
		lower := strings.ToLower(strings.TrimSpace(msg))

		isRobot := false
		for _, phrase := range robotPhrases {
			if lower == phrase || strings.HasPrefix(lower, phrase+" ") || strings.HasSuffix(lower, " "+phrase) {
				isRobot = true
				break
			}
		}
		if isRobot {
			det.RobotCount++
			if len(det.RobotExamples) < 5 {
				det.RobotExamples = append(det.RobotExamples, clip(msg, 60))
			}
			continue
		}

		matches := 0
		for _, pattern := range creativeIndicators {
			if pattern.MatchString(msg) {
				matches++
			}
		}
		if matches >= 2 || (len(msg) > 40 && matches >= 1) {
			det.CreativeCount++
			if len(det.CreativeExamples) < 3 {
				det.CreativeExamples = append(det.CreativeExamples, clip(msg, 80))
			}
		}
	}

	return det
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

type rawDuelQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Difficulty    string   `json:"difficulty"`
}

// GenerateDuelQuestions produces n quiz questions for a topic.
func (c *Client) GenerateDuelQuestions(ctx context.Context, topic string, n int) ([]models.DuelQuestion, error) {
	utils.LogAI("Generating %d duel questions for topic %q", n, topic)

	prompt := fmt.Sprintf(`Generate %d quiz questions about "%s" for a fast-paced quiz battle.

Return ONLY a JSON array with this exact shape:
[
  {
    "question": "Question text",
    "options": ["A", "B", "C", "D"],
    "correctAnswer": "A",
    "difficulty": "easy"
  }
]

Rules:
- Exactly 4 options per question; correctAnswer must match one option exactly
- difficulty is one of: easy, medium, hard; mix them
- Questions must be short enough to read in a few seconds
- Respond in the same language as the topic`, n, topic)

	text, err := c.generate(ctx, c.cfg.APIKey, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var raw []rawDuelQuestion
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parse duel questions JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("AI returned an empty question list")
	}

	questions := make([]models.DuelQuestion, 0, len(raw))
	for i, q := range raw {
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		questions = append(questions, models.DuelQuestion{
			ID:            fmt.Sprintf("q-%d", i),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Difficulty:    difficulty,
		})
	}
	return questions, nil
}

// GenerateBossIntro produces the boss's opening taunt.
func (c *Client) GenerateBossIntro(ctx context.Context, topic, difficulty, bossName string) (string, error) {
	prompt := fmt.Sprintf(`You are %s, a %s-difficulty quiz boss testing a student's knowledge of "%s".

Write your opening message: introduce yourself in character, explain that you will ask challenging questions about the topic, and ask your first question. Be theatrical but keep it under 100 words. End with your first question. Respond in the same language as the topic. Plain text only, no markdown.`,
		bossName, difficulty, topic)

	return c.generate(ctx, c.cfg.APIKey, prompt)
}

// BossTurn is the collaborator's structured judgment of one round
type BossTurn struct {
	Response     string `json:"response"`
	PlayerDamage int    `json:"playerDamage"`
	BossDamage   int    `json:"bossDamage"`
}

// GenerateBossTurn judges the player's free-text answer given the
// conversation so far and returns the boss's narrative plus the two
// damage numbers. Damage is clamped to the documented ranges.
func (c *Client) GenerateBossTurn(ctx context.Context, topic, difficulty, bossName string, history []models.BossMessage, answer string) (*BossTurn, error) {
	var transcript strings.Builder
	for _, m := range history {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
	}

	prompt := fmt.Sprintf(`You are %s, a %s-difficulty quiz boss battling a student on the topic "%s".

CONVERSATION SO FAR:
%s
STUDENT'S LATEST ANSWER: %s

Judge the quality of the student's answer, respond in character, and ask your next question.

Return ONLY JSON with this exact shape:
{
  "response": "your in-character reply ending with the next question",
  "playerDamage": 0,
  "bossDamage": 0
}

Rules:
- playerDamage (0-25): damage YOU deal to the student; 0 for an excellent answer, up to 25 for a wrong or empty one
- bossDamage (0-20): damage the student deals to YOU; up to 20 for an excellent answer, 0 for a wrong one
- Keep the response under 80 words, plain text, no markdown
- Respond in the same language as the student`, bossName, difficulty, topic, transcript.String(), answer)

	text, err := c.generate(ctx, c.cfg.APIKey, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var turn BossTurn
	if err := json.Unmarshal([]byte(payload), &turn); err != nil {
		return nil, fmt.Errorf("parse boss turn JSON: %w", err)
	}

	turn.PlayerDamage = clampInt(turn.PlayerDamage, 0, 25)
	turn.BossDamage = clampInt(turn.BossDamage, 0, 20)
	return &turn, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

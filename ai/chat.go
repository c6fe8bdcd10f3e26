package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/colearn-app/colearn-api/utils"
)

// Chat answers a free-form message, optionally grounded in context.
func (c *Client) Chat(ctx context.Context, message, chatContext string) (string, error) {
	prompt := message + "\n\n(Answer in the language of the user's question)"
	if chatContext != "" {
		prompt = fmt.Sprintf("Context: %s\n\nUser's question: %s\n\nAnswer (in the language of the user's question):",
			chatContext, message)
	}
	return c.generate(ctx, c.cfg.APIKey, prompt)
}

const tutorLessonLimit = 3000

// AskTutor answers a student question scoped to lesson content. The
// tutor, primary and backup keys are tried in order; the first success
// wins.
func (c *Client) AskTutor(ctx context.Context, lessonContent, question string) (string, error) {
	if len(lessonContent) > tutorLessonLimit {
		lessonContent = lessonContent[:tutorLessonLimit]
	}

	prompt := fmt.Sprintf(`You are an AI tutor on the CoLearn platform. A student is reading a lesson and asked a question.

LESSON CONTENT:
%s

STUDENT'S QUESTION: %s

STRICT RULES:
1. ALWAYS respond in the SAME language as the student's question.
2. Keep your answer SHORT: maximum 3-5 sentences. Be concise and precise.
3. Give ONE clear example if needed, not multiple.
4. NEVER use any markdown: no **, no *, no ###, no bullet points, no lists. Plain text only.
5. Use simple line breaks to separate thoughts.
6. Be friendly but brief.`, lessonContent, question)

	keys := []string{c.cfg.TutorKey, c.cfg.APIKey, c.cfg.BackupKey}
	for i, key := range keys {
		answer, err := c.generate(ctx, key, prompt)
		if err == nil {
			return answer, nil
		}
		utils.LogError("Tutor key %d failed: %v", i+1, err)
	}
	return "", errors.New("all AI API keys failed")
}

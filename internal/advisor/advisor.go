// Package advisor реализует непрозрачного AI-советника поверх Gemini:
// анализ расходов и подсказку категории по названию сервиса.
//
// Движок не интерпретирует ответы советника: числа и тексты анализа
// отдаются как есть, а подсказанная категория проверяется на
// принадлежность закрытому множеству с откатом к CategoryOther.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/subtrackhq/subtrack/internal/lib/sl"
	"github.com/subtrackhq/subtrack/internal/models"
)

// Advisor держит genai-клиент и ограничитель частоты запросов.
type Advisor struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	log     *slog.Logger
}

// New создаёт советника. Ключ API genai-клиент берёт из окружения
// (GEMINI_API_KEY).
func New(ctx context.Context, model string, requestsPerMinute int, log *slog.Logger) (*Advisor, error) {
	const op = "advisor.New"
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Advisor{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 1),
		log:     log,
	}, nil
}

// Analyze отправляет советнику сводку подписок и возвращает его оценку
// расходов, наблюдение и советы по экономии.
func (a *Advisor) Analyze(ctx context.Context, subs []models.Subscription) (*models.AnalysisResult, error) {
	const op = "advisor.Analyze"

	if len(subs) == 0 {
		return nil, fmt.Errorf("%s: nothing to analyze", op)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prompt, err := buildAnalysisPrompt(subs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"totalMonthly": {Type: genai.TypeNumber, Description: "Total estimated monthly cost in the user's dominant currency"},
				"totalYearly":  {Type: genai.TypeNumber},
				"insight":      {Type: genai.TypeString},
				"savingsTips":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"totalMonthly", "totalYearly", "insight", "savingsTips"},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: generate content: %w", op, err)
	}
	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("%s: empty response from model", op)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &result); err != nil {
		return nil, fmt.Errorf("%s: parse response: %w", op, err)
	}
	return &result, nil
}

// SuggestCategory просит советника отнести сервис к одной из категорий.
// Ответ вне закрытого множества, как и любая ошибка запроса, даёт
// CategoryOther: подсказка не должна ломать добавление подписки.
func (a *Advisor) SuggestCategory(ctx context.Context, name string) models.Category {
	const op = "advisor.SuggestCategory"

	if err := a.limiter.Wait(ctx); err != nil {
		a.log.Warn("rate limiter interrupted", sl.Err(err))
		return models.CategoryOther
	}

	prompt := fmt.Sprintf(
		"Categorize the subscription service %q into one of these exact categories: %s. Return only the category name.",
		name, categoryList())
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		a.log.Warn("category suggestion failed, falling back to Other", sl.Err(err))
		return models.CategoryOther
	}

	return FallbackCategory(resp.Text())
}

// FallbackCategory отображает сырой ответ советника на закрытое множество
// категорий, откатываясь к CategoryOther для любого чужого значения.
func FallbackCategory(raw string) models.Category {
	category, err := models.ParseCategory(strings.TrimSpace(raw))
	if err != nil {
		return models.CategoryOther
	}
	return category
}

// buildAnalysisPrompt собирает компактную сводку подписок без секретов
// и идентификаторов: советнику отдаются только название, цена, валюта,
// цикл и категория.
func buildAnalysisPrompt(subs []models.Subscription) (string, error) {
	type row struct {
		Name      string  `json:"name"`
		Cost      float64 `json:"cost"`
		Currency  string  `json:"currency"`
		Frequency string  `json:"frequency"`
		Category  string  `json:"category"`
	}
	rows := make([]row, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, row{
			Name:      sub.Name,
			Cost:      sub.Price,
			Currency:  string(sub.Currency),
			Frequency: string(sub.Cycle),
			Category:  string(sub.Category),
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Analyze the following subscription data for a user.\n")
	b.WriteString("The data may contain different currencies (USD, EUR, TRY).\n")
	b.WriteString("1. Calculate the equivalent total monthly cost (approximate yearly by dividing by 12, weekly by multiplying by 4).\n")
	b.WriteString("2. Provide a brief, friendly insight about their spending habits.\n")
	b.WriteString("3. Provide 3 specific, actionable short tips to save money or manage subscriptions better based on this specific list.\n\n")
	b.WriteString("Data: ")
	b.Write(data)
	return b.String(), nil
}

func categoryList() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// cleanModelJSON срезает markdown-ограждения, если модель проигнорировала
// инструкцию отвечать чистым JSON.
func cleanModelJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

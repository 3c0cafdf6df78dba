package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tercuman/internal/domain"
)

// Generator implements ports.CardGenerator against the generateContent
// REST endpoint with a schema-constrained JSON response.
type Generator struct {
	cfg    Config
	client *http.Client
}

func NewGenerator(cfg Config) *Generator {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash-preview"
	}
	return &Generator{cfg: cfg, client: &http.Client{}}
}

func (g *Generator) GenerateCards(ctx context.Context, words []string, essential []string) ([]domain.StudyCard, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	reqBody := generateRequest{
		Contents: []contentPayload{{Parts: []contentPart{{Text: buildCardPrompt(words, essential)}}}},
		GenerationConfig: &textGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   cardSchema(),
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling generation request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.APIBaseURL, "/"), g.cfg.TextModel, g.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("generation failed (status %d): %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding generation response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates returned from generation API")
	}

	content := genResp.Candidates[0].Content.Parts[0].Text
	var wrapper struct {
		Cards []domain.StudyCard `json:"cards"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
		return nil, fmt.Errorf("parsing study cards: %w", err)
	}
	if len(wrapper.Cards) == 0 {
		return nil, fmt.Errorf("generation response contained no cards")
	}

	return wrapper.Cards, nil
}

func buildCardPrompt(words []string, essential []string) string {
	var sb strings.Builder
	sb.WriteString("I have a list of English words I use: " + strings.Join(words, ", ") + ".\n")
	sb.WriteString("Generate a study guide entry for each word.\n")
	if len(essential) > 0 {
		sb.WriteString("These words are from a target vocabulary list, make the phrases for them very high quality: " + strings.Join(essential, ", ") + ".\n")
	}
	sb.WriteString("For each word provide:\n")
	sb.WriteString("1. A common single-word synonym (most used alternative).\n")
	sb.WriteString("2. A short, natural daily conversation phrase using the word.\n")
	sb.WriteString("Return strictly JSON.")
	return sb.String()
}

func cardSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"cards": {
				"type": "ARRAY",
				"items": {
					"type": "OBJECT",
					"properties": {
						"word": {"type": "STRING"},
						"synonym": {"type": "STRING"},
						"phrase": {"type": "STRING"}
					},
					"required": ["word", "synonym", "phrase"]
				}
			}
		},
		"required": ["cards"]
	}`)
}

type generateRequest struct {
	Contents         []contentPayload      `json:"contents"`
	GenerationConfig *textGenerationConfig `json:"generationConfig,omitempty"`
}

type textGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

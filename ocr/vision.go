package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const visionPrompt = `Transcribe all text visible in the image.
Reply with JSON only, in the form {"lines":[{"text":"...","confidence":0.0}]}.
Keep the reading order, one entry per visual line. Confidence is between 0 and 1.
Return {"lines":[]} when the image contains no text.`

// VisionConfig configures the vision engine.
type VisionConfig struct {
	APIKey  string
	BaseURL string // Optional, for OpenAI-compatible endpoints
	Model   string
}

// VisionEngine transcribes images with an OpenAI-compatible vision model.
type VisionEngine struct {
	client openai.Client
	model  string
}

// NewVision creates a vision engine.
func NewVision(cfg VisionConfig, opts ...option.RequestOption) *VisionEngine {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &VisionEngine{
		client: openai.NewClient(reqOpts...),
		model:  cfg.Model,
	}
}

// Name returns the backend identifier.
func (e *VisionEngine) Name() string {
	return BackendVision.String()
}

// Recognize sends img to the model and parses the transcribed lines.
func (e *VisionEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return Result{}, err
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(visionPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return Result{}, fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("vision completion: no choices")
	}

	lines, err := parseVisionLines(resp.Choices[0].Message.Content)
	if err != nil {
		return Result{}, err
	}
	return ResultFromLines(lines), nil
}

type visionReply struct {
	Lines []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"lines"`
}

// parseVisionLines decodes the model reply, tolerating a Markdown code fence.
func parseVisionLines(content string) ([]Line, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var reply visionReply
	if err := json.Unmarshal([]byte(s), &reply); err != nil {
		return nil, fmt.Errorf("unmarshal vision reply: %w", err)
	}

	lines := make([]Line, 0, len(reply.Lines))
	for _, l := range reply.Lines {
		lines = append(lines, Line{Text: l.Text, Confidence: l.Confidence})
	}
	return lines, nil
}

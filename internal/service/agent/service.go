package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/trade-trigger/internal/config"
)

const systemPrompt = `Tu es un agent IA de trading autonome.
À chaque demande de trade, réponds exclusivement par une seule ligne au format :
trade: (long|short), allocation: (x.x)%, stoploss: $(x.x), takeprofit: $(x.x), sentiment: (x.x)%
Si aucune opportunité n'est assez forte (sentiment < 70 %), réponds "trade: wait".`

// WaitReply is the answer when no opportunity is taken.
const WaitReply = "trade: wait"

// Replier answers a prompt posted to the agent's channel.
type Replier interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// StaticReplier always answers with the same line.
type StaticReplier string

func (r StaticReplier) Reply(context.Context, string) (string, error) {
	return string(r), nil
}

// Service answers prompts through an eino chain over the Ark chat model.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the model from cfg and compiles the prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel compiles the prompt chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Reply runs the chain and keeps only the first non-empty line of the answer.
func (s *Service) Reply(ctx context.Context, query string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run agent chain: %w", err)
	}

	line := firstLine(response.Content)
	if line == "" {
		return WaitReply, nil
	}
	if _, err := ParseTrade(line); err != nil && line != WaitReply {
		log.Printf("[agent] reply does not match trade format: %q", line)
	}
	return line, nil
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var tradePattern = regexp.MustCompile(`(?i)trade:\s*(long|short)\s*,\s*allocation:\s*(\d+(?:\.\d+)?)%\s*,\s*stoploss:\s*\$(\d+(?:\.\d+)?)\s*,\s*takeprofit:\s*\$(\d+(?:\.\d+)?)\s*,\s*sentiment:\s*(\d+(?:\.\d+)?)%`)

// Trade is a parsed order line.
type Trade struct {
	Side       string
	Allocation float64
	StopLoss   float64
	TakeProfit float64
	Sentiment  float64
}

// ParseTrade extracts an order from a reply line.
func ParseTrade(line string) (Trade, error) {
	m := tradePattern.FindStringSubmatch(line)
	if m == nil {
		return Trade{}, fmt.Errorf("not a trade line: %q", line)
	}

	nums := make([]float64, 4)
	for i := range nums {
		v, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return Trade{}, fmt.Errorf("parse trade field %d: %w", i, err)
		}
		nums[i] = v
	}

	return Trade{
		Side:       strings.ToLower(m[1]),
		Allocation: nums[0],
		StopLoss:   nums[1],
		TakeProfit: nums[2],
		Sentiment:  nums[3],
	}, nil
}

package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/trade-trigger/internal/model/messaging"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Sender   SenderConfig
	Schedule ScheduleConfig
	Server   ServerConfig
	AI       AIConfig
	Metrics  MetricsConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	sender, err := loadSenderConfig()
	if err != nil {
		return nil, err
	}

	schedule, err := loadScheduleConfig()
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := env.ParseAs[AIConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse ai config: %w", err)
	}

	metrics, err := env.ParseAs[MetricsConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse metrics config: %w", err)
	}

	return &Config{
		Sender:   sender,
		Schedule: schedule,
		Server:   server,
		AI:       ai,
		Metrics:  metrics,
	}, nil
}

// SenderConfig describes where and what the trigger posts.
type SenderConfig struct {
	BaseURL      string        `env:"MESSAGING_BASE_URL" envDefault:"http://localhost:3000"`
	ChannelID    string        `env:"MESSAGING_CHANNEL_ID" envDefault:"91b0c098-b2c3-44f8-9dbb-f0d3ca2626f4"`
	AuthorID     string        `env:"MESSAGING_AUTHOR_ID" envDefault:"f6a0a8d1-f28d-4538-bdab-5eb0b527430c"`
	ServerID     string        `env:"MESSAGING_SERVER_ID" envDefault:"00000000-0000-0000-0000-000000000000"`
	TargetUserID string        `env:"MESSAGING_TARGET_USER_ID" envDefault:"49352196-f6d2-0e9b-a5cd-896a96f5119d"`
	MessageID    string        `env:"MESSAGING_MESSAGE_ID" envDefault:"00b8ecdb-fc80-4fab-a643-93586b43cf53"`
	Content      string        `env:"MESSAGING_CONTENT" envDefault:"fais un trade"`
	Timeout      time.Duration `env:"MESSAGING_TIMEOUT" envDefault:"10s"`
}

// Identity returns the routing identifiers for the payload.
func (c SenderConfig) Identity() messaging.Identity {
	return messaging.Identity{
		ChannelID:    c.ChannelID,
		AuthorID:     c.AuthorID,
		ServerID:     c.ServerID,
		TargetUserID: c.TargetUserID,
		MessageID:    c.MessageID,
	}
}

// Payload builds the static submission described by the configuration.
func (c SenderConfig) Payload() messaging.Payload {
	return messaging.NewPayload(c.Identity(), c.Content)
}

func loadSenderConfig() (SenderConfig, error) {
	cfg, err := env.ParseAs[SenderConfig]()
	if err != nil {
		return SenderConfig{}, fmt.Errorf("parse sender config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return SenderConfig{}, fmt.Errorf("invalid MESSAGING_BASE_URL value: %q", cfg.BaseURL)
	}

	if strings.TrimSpace(cfg.Content) == "" {
		return SenderConfig{}, fmt.Errorf("MESSAGING_CONTENT must not be empty")
	}

	if cfg.Timeout <= 0 {
		return SenderConfig{}, fmt.Errorf("invalid MESSAGING_TIMEOUT value: %s", cfg.Timeout)
	}

	if err := cfg.Identity().Validate(); err != nil {
		return SenderConfig{}, err
	}

	return cfg, nil
}

// ScheduleConfig 描述发送周期。Cron 非空时优先于 Interval。
type ScheduleConfig struct {
	Interval time.Duration `env:"SCHEDULE_INTERVAL" envDefault:"3600s"`
	Cron     string        `env:"SCHEDULE_CRON"`
}

func loadScheduleConfig() (ScheduleConfig, error) {
	cfg, err := env.ParseAs[ScheduleConfig]()
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("parse schedule config: %w", err)
	}

	cfg.Cron = strings.TrimSpace(cfg.Cron)
	if cfg.Cron != "" {
		gron := gronx.New()
		if !gron.IsValid(cfg.Cron) {
			return ScheduleConfig{}, fmt.Errorf("invalid SCHEDULE_CRON value: %q", cfg.Cron)
		}
		return cfg, nil
	}

	if cfg.Interval <= 0 {
		return ScheduleConfig{}, fmt.Errorf("invalid SCHEDULE_INTERVAL value: %s", cfg.Interval)
	}
	return cfg, nil
}

// ServerConfig 描述本地调试服务器的监听配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	raw, err := env.ParseAs[struct {
		Port string `env:"PORT" envDefault:"3000"`
	}]()
	if err != nil {
		return ServerConfig{}, fmt.Errorf("parse server config: %w", err)
	}

	port := strings.TrimSpace(raw.Port)
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// MetricsConfig controls the optional Prometheus listener of the sender.
type MetricsConfig struct {
	Addr string `env:"METRICS_ADDR"`
}

// Enabled reports whether a metrics listener should be started.
func (c MetricsConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// AIConfig 描述调试服务器中模拟智能体所用的大模型配置。
type AIConfig struct {
	APIKey    string `env:"ARK_API_KEY"`
	AccessKey string `env:"ARK_ACCESS_KEY"`
	SecretKey string `env:"ARK_SECRET_KEY"`
	Model     string `env:"ARK_MODEL"`
	BaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region    string `env:"ARK_REGION" envDefault:"cn-beijing"`
	MaxTokens *int   `env:"ARK_MAX_TOKENS"`
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing, provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
	}

	return ark.NewChatModel(ctx, cfg)
}

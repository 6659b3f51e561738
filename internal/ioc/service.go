package ioc

import (
	"context"
	"time"

	"github.com/mrz1836/postmark"
	"github.com/redis/go-redis/v9"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/idempotent"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/retry"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/channel"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/communication"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/event"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/notification"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/policy"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/email"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/push"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/selector"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/simulate"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/sms"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider/whatsapp"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/sender"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/stats"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultAlertDedupeWindow = 24 * time.Hour

var ServiceFxOpt = fx.Options(
	fx.Provide(
		// template registry
		fx.Annotate(
			template.NewDefaultRegistry,
			fx.As(new(template.Registry)),
		),
		// sms network policy
		InitNetworkPolicy,
		// delivery stats
		fx.Annotate(
			stats.NewShardedTracker,
			fx.As(new(stats.Tracker)),
		),
		// delivery event publisher
		InitPublisher,

		// providers & channels
		InitProviders,
		InitChannelMap,
		channel.NewDispatcher,

		// notification send service
		InitSendService,
		// bulk sender
		InitBulkSender,

		// attendance alert dedupe
		InitAlertDedupe,
		// communication use-cases
		InitCommunicationService,
	),
)

// channelProviders 各渠道的供应商列表，按顺序降级
type channelProviders map[domain.Channel][]provider.Provider

func InitNetworkPolicy() *policy.DefaultNetworkPolicy {
	table := policy.DefaultRateTable()
	if viper.IsSet("sms.rates") {
		table = policy.RateTable{}
		if err := viper.UnmarshalKey("sms.rates", &table); err != nil {
			panic(err)
		}
	}

	p, err := policy.NewDefaultNetworkPolicy(table)
	if err != nil {
		panic(err)
	}
	return p
}

func InitPublisher(lc fx.Lifecycle, logger *zap.Logger) event.Publisher {
	type config struct {
		Brokers      []string      `mapstructure:"brokers"`
		Topic        string        `mapstructure:"topic"`
		BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	}
	cfg := &config{}
	if err := viper.UnmarshalKey("kafka", cfg); err != nil {
		panic(err)
	}

	if len(cfg.Brokers) == 0 {
		logger.Info("[educafric] kafka brokers not configured, delivery events are dropped")
		return event.NopPublisher{}
	}

	writer := event.NewKafkaWriter(cfg.Brokers, cfg.Topic, cfg.BatchTimeout)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return writer.Close()
		},
	})
	return event.NewKafkaPublisher(writer)
}

// InitProviders 初始化各渠道供应商。
//
// notification.simulate 为 true 时所有渠道都使用模拟供应商，
// 否则只接入配置完整的真实供应商，没有供应商的渠道不会注册。
func InitProviders(redisClient redis.Cmdable, logger *zap.Logger) channelProviders {
	if viper.GetBool("notification.simulate") {
		sim := simulate.NewProvider(logger)
		return channelProviders{
			domain.ChannelSMS:      {sim},
			domain.ChannelEmail:    {sim},
			domain.ChannelWhatsApp: {sim},
			domain.ChannelPush:     {sim},
		}
	}

	type tencentConfig struct {
		RegionId   string `mapstructure:"region_id"`
		AppId      string `mapstructure:"app_id"`
		SecretId   string `mapstructure:"secret_id"`
		SecretKey  string `mapstructure:"secret_key"`
		SignName   string `mapstructure:"sign_name"`
		TemplateId string `mapstructure:"template_id"`
	}
	type postmarkConfig struct {
		ServerToken  string `mapstructure:"server_token"`
		AccountToken string `mapstructure:"account_token"`
		From         string `mapstructure:"from"`
		ReplyTo      string `mapstructure:"reply_to"`
	}
	type whatsappConfig struct {
		BaseURL       string        `mapstructure:"base_url"`
		PhoneNumberId string        `mapstructure:"phone_number_id"`
		AccessToken   string        `mapstructure:"access_token"`
		Timeout       time.Duration `mapstructure:"timeout"`
	}
	type config struct {
		Tencent  tencentConfig  `mapstructure:"tencent"`
		Postmark postmarkConfig `mapstructure:"postmark"`
		WhatsApp whatsappConfig `mapstructure:"whatsapp"`
		Push     bool           `mapstructure:"push"`
	}

	cfg := &config{}
	if err := viper.UnmarshalKey("providers", cfg); err != nil {
		panic(err)
	}

	res := make(channelProviders)
	if cfg.Tencent.AppId != "" {
		client, err := sms.NewTencentClient(cfg.Tencent.RegionId, cfg.Tencent.AppId, cfg.Tencent.SecretId, cfg.Tencent.SecretKey)
		if err != nil {
			panic(err)
		}
		res[domain.ChannelSMS] = append(res[domain.ChannelSMS],
			sms.NewProvider("tencent_sms", client, cfg.Tencent.SignName, cfg.Tencent.TemplateId),
		)
	}
	if cfg.Postmark.ServerToken != "" {
		client := postmark.NewClient(cfg.Postmark.ServerToken, cfg.Postmark.AccountToken)
		res[domain.ChannelEmail] = append(res[domain.ChannelEmail],
			email.NewPostmarkProvider(client, cfg.Postmark.From, cfg.Postmark.ReplyTo),
		)
	}
	if cfg.WhatsApp.AccessToken != "" {
		res[domain.ChannelWhatsApp] = append(res[domain.ChannelWhatsApp],
			whatsapp.NewCloudProvider(cfg.WhatsApp.BaseURL, cfg.WhatsApp.PhoneNumberId, cfg.WhatsApp.AccessToken, cfg.WhatsApp.Timeout),
		)
	}
	if cfg.Push {
		res[domain.ChannelPush] = append(res[domain.ChannelPush], push.NewRedisProvider(redisClient))
	}
	return res
}

func InitChannelMap(
	providers channelProviders,
	registry template.Registry,
	networkPolicy *policy.DefaultNetworkPolicy,
	logger *zap.Logger,
) map[domain.Channel]channel.Channel {
	retryCfg := retry.Config{}
	if err := viper.UnmarshalKey("notification.retry", &retryCfg); err != nil {
		panic(err)
	}
	strategy, err := retry.NewRetryStrategy(retryCfg)
	if err != nil {
		panic(err)
	}

	var opts []channel.Option
	if strategy != nil {
		opts = append(opts, channel.WithRetryStrategy(strategy))
	}

	channels := make(map[domain.Channel]channel.Channel, len(providers))
	for c, ps := range providers {
		if len(ps) == 0 {
			continue
		}

		sb := selector.NewSeqSelectorBuilder(ps...)
		switch c {
		case domain.ChannelSMS:
			channels[c] = channel.NewSmsChannel(sb, registry, networkPolicy, logger, opts...)
		case domain.ChannelEmail:
			channels[c] = channel.NewEmailChannel(sb, registry, logger, opts...)
		case domain.ChannelWhatsApp:
			channels[c] = channel.NewWhatsAppChannel(sb, registry, logger, opts...)
		case domain.ChannelPush:
			channels[c] = channel.NewPushChannel(sb, registry, logger, opts...)
		}
		logger.Info(
			"[educafric] channel registered",
			zap.String("channel", c.String()),
			zap.Int("providers", len(ps)),
		)
	}
	return channels
}

func InitSendService(
	dispatcher *channel.Dispatcher,
	tracker stats.Tracker,
	publisher event.Publisher,
	metrics *notification.Metrics,
	logger *zap.Logger,
) notification.SendService {
	opts := []notification.Option{notification.WithMetrics(metrics)}
	if timeout := viper.GetDuration("notification.send_timeout"); timeout > 0 {
		opts = append(opts, notification.WithSendTimeout(timeout))
	}
	return notification.NewDefaultSendService(dispatcher, tracker, publisher, logger, opts...)
}

func InitBulkSender(svc notification.SendService, logger *zap.Logger) sender.BulkSender {
	cfg := sender.Config{}
	if err := viper.UnmarshalKey("notification.bulk", &cfg); err != nil {
		panic(err)
	}
	return sender.NewDefaultBulkSender(svc, cfg, logger)
}

// InitAlertDedupe 考勤提醒去重，单实例部署可使用本地缓存
func InitAlertDedupe(client redis.Cmdable) idempotent.Strategy {
	window := viper.GetDuration("communication.alert_dedupe_window")
	if window <= 0 {
		window = defaultAlertDedupeWindow
	}
	if viper.GetString("communication.alert_dedupe") == "local" {
		return idempotent.NewLocalStrategy(window)
	}
	return idempotent.NewRedisStrategy(client, window)
}

func InitCommunicationService(
	sendSvc notification.SendService,
	tracker stats.Tracker,
	recipientRepo repository.RecipientRepo,
	studentRepo repository.StudentRepo,
	schoolRepo repository.SchoolRepo,
	logRepo repository.CommunicationLogRepo,
	dedupe idempotent.Strategy,
	logger *zap.Logger,
) communication.Service {
	type config struct {
		Timezone    string `mapstructure:"timezone"`
		ParentLimit int    `mapstructure:"parent_limit"`
	}
	cfg := &config{}
	if err := viper.UnmarshalKey("communication", cfg); err != nil {
		panic(err)
	}

	svcCfg := communication.Config{ParentLimit: cfg.ParentLimit}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			panic(err)
		}
		svcCfg.Location = loc
	}

	return communication.NewDefaultService(
		sendSvc, tracker, recipientRepo, studentRepo, schoolRepo, logRepo, dedupe, svcCfg, logger,
	)
}

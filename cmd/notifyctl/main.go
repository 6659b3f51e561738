package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	grpcapi "github.com/simonmuehling/educafric-platform-sub010/internal/api/grpc"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/client"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/registry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// notifyctl 通过注册中心发现通知服务，查询发送统计或学校通讯统计。
//
//	notifyctl --template ABSENCE_ALERT
//	notifyctl --school 12
func main() {
	configFile := pflag.String("config", "etc/config.yaml", "配置文件路径")
	group := pflag.String("group", "", "只访问指定分组的实例")
	tpl := pflag.String("template", "", "模板 key，为空时查询全部模板统计")
	schoolId := pflag.Uint64("school", 0, "学校 id，不为 0 时查询学校通讯统计")
	timeout := pflag.Duration("timeout", 5*time.Second, "请求超时时间")
	pflag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	viper.SetConfigFile(*configFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatal("[educafric] failed to read config", zap.Error(err))
	}

	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   viper.GetStringSlice("etcd.endpoints"),
		Username:    viper.GetString("etcd.username"),
		Password:    viper.GetString("etcd.password"),
		DialTimeout: *timeout,
	})
	if err != nil {
		logger.Fatal("[educafric] failed to connect etcd", zap.Error(err))
	}
	defer func() { _ = etcdClient.Close() }()

	r, err := registry.NewEtcdRegistry(etcdClient)
	if err != nil {
		logger.Fatal("[educafric] failed to create registry", zap.Error(err))
	}
	defer func() { _ = r.Close() }()

	clients := client.NewClients(
		client.NewResolverBuilder(r, *timeout),
		true,
		func(conn grpc.ClientConnInterface) *grpcapi.NotificationServiceClient {
			return grpcapi.NewNotificationServiceClient(conn)
		},
	)
	defer func() { _ = clients.Close() }()

	svc, err := clients.Get(viper.GetString("app.name"))
	if err != nil {
		logger.Fatal("[educafric] failed to create client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(client.WithGroup(context.Background(), *group), *timeout)
	defer cancel()

	var out any
	if *schoolId != 0 {
		out, err = svc.GetCommunicationStats(ctx, &grpcapi.GetCommunicationStatsReq{SchoolId: *schoolId})
	} else {
		out, err = svc.GetStats(ctx, &grpcapi.GetStatsReq{Template: domain.TemplateKey(*tpl)})
	}
	if err != nil {
		logger.Fatal("[educafric] request failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(out); err != nil {
		logger.Fatal("[educafric] failed to encode response", zap.Error(err))
	}
}

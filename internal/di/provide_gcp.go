package di

import (
	"context"

	"github.com/cas124/media-pacing/internal/services"
)

func ProvideConfig() *services.Config {
	return services.LoadConfig()
}

func ProvideSecretManager(ctx context.Context) (*services.SecretManagerService, error) {
	return services.NewSecretManagerService(ctx)
}

func ProvideBigQuery(ctx context.Context, config *services.Config, secrets *services.SecretManagerService) (*services.BigQueryService, error) {
	return services.NewBigQueryService(ctx, config, secrets)
}

func ProvideCloudRun(ctx context.Context) (*services.CloudRunService, error) {
	return services.NewCloudRunService(ctx)
}

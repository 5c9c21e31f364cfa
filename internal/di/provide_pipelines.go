package di

import (
	"time"

	"github.com/cas124/media-pacing/internal/dao/rundao"
	"github.com/cas124/media-pacing/internal/orchestrator"
	"github.com/cas124/media-pacing/internal/pipeline"
	"github.com/cas124/media-pacing/internal/server"
	"github.com/cas124/media-pacing/internal/services"
)

func ProvideWordPress(config *services.Config) *services.WordPressService {
	return services.NewWordPressService(config.WordPress)
}

func ProvideQuickBooks(config *services.Config, secrets *services.SecretManagerService) *services.QuickBooksService {
	return services.NewQuickBooksService(config.QuickBooks, config.ProjectID, secrets)
}

// ProvideSpokes assembles the ad platform spokes that have credentials
// configured. An enabled Google Ads spoke with a broken config file is an
// error; an unconfigured spoke is simply absent.
func ProvideSpokes(config *services.Config) ([]services.SpendFetcher, error) {
	var spokes []services.SpendFetcher

	if config.Meta.AccessToken != "" && config.Meta.AdAccountID != "" {
		spokes = append(spokes, services.NewMetaService(config.Meta))
	}

	if config.GoogleAds.CustomerID != "" {
		ads, err := services.LoadAdsConfig(config.GoogleAds.ConfigFile)
		if err != nil {
			return nil, err
		}
		spokes = append(spokes, services.NewGoogleAdsService(ads, config.GoogleAds.CustomerID))
	}

	return spokes, nil
}

func ProvideRegistry(config *services.Config, wordpress *services.WordPressService, quickbooks *services.QuickBooksService, bq *services.BigQueryService, spokes []services.SpendFetcher) *pipeline.Registry {
	return pipeline.NewRegistry(
		pipeline.NewLearnDash(wordpress, bq, config.LearnDashDataset, config.LearnDashTable, config.WordPress.Password != ""),
		pipeline.NewQBOSales(quickbooks, bq, config.SalesDataset, config.SalesTable, config.TargetProduct),
		pipeline.NewMediaPacing(spokes, bq, config.PacingDataset, config.PacingTable),
	)
}

func ProvideRunDAO(config *services.Config, bq *services.BigQueryService) *rundao.DAO {
	return rundao.New(bq, config.OpsDataset, config.OpsTable)
}

func ProvideOrchestrator(registry *pipeline.Registry, dao *rundao.DAO, timeout TaskTimeout) *orchestrator.Orchestrator {
	return orchestrator.New(registry, dao, time.Duration(timeout))
}

func ProvideServer(orch *orchestrator.Orchestrator) *server.Server {
	return server.New(orch, "qbo-sales")
}

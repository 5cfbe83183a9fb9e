package provider

// ModelType names a standard data model. Each model fixes the Go type a
// fetcher returns in FetchResult.Data.
type ModelType string

const (
	// ModelFredSeries is a single FRED series; Data is []models.SeriesPoint.
	ModelFredSeries ModelType = "FredSeries"
)

// AllModels returns every model type known to openstress.
func AllModels() []ModelType {
	return []ModelType{ModelFredSeries}
}

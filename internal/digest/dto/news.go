package dto

// Category is a news digest topic category.
type Category string

const (
	CategoryTech     Category = "tech"
	CategoryPolitics Category = "politics"
	CategoryEconomy  Category = "economy"
	CategorySFLocal  Category = "sf-local"
)

// AllCategories returns the four digest categories in display order.
func AllCategories() []Category {
	return []Category{CategoryTech, CategoryPolitics, CategoryEconomy, CategorySFLocal}
}

// NewsArticle is the uniform article shape produced by every source adapter.
// Identity is the URL; titles are used for soft deduplication of reposts.
type NewsArticle struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"published_date"`
	Source        string `json:"source"`
}

// CategoryNews is one category's finished digest section.
type CategoryNews struct {
	Category        Category      `json:"category"`
	SummaryShort    string        `json:"summary_short"`
	SummaryDetailed string        `json:"summary_detailed"`
	Bullets         []string      `json:"bullets"`
	Sources         []NewsArticle `json:"sources"`
	Keywords        []string      `json:"keywords"`
}

// AggregateOptions controls the generic aggregation pipeline.
type AggregateOptions struct {
	Deduplicate bool
	FilterDays  int
	Rank        bool
	MaxArticles int
}

// NewsAPIResponse is the wire shape of the keyed news search API.
type NewsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []NewsAPIArticle `json:"articles"`
}

// NewsAPIArticle is one article as returned by the keyed news search API.
type NewsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}
